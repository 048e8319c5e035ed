// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/properview/client"
	"github.com/danielhkuo/properview/filter"
	"github.com/danielhkuo/properview/view"
)

const browseHelp = `Filters:
  location <text>     match city, state or address (no text clears)
  min <price>|any     minimum price
  max <price>|any     maximum price
  beds <n>|any        minimum bedrooms
  baths <n>|any       minimum bathrooms
  sold [on|off]       include sold listings (no argument toggles)
  clear               drop every filter

View:
  view                toggle list and map
  list | map          switch to a mode
  select <#|id>       select from the list
  pin <#|id>          select from the map
  unselect            clear the selection
  info <#|id>         show listing details

Other:
  back                return to the previous page
  show                reload the current page
  url                 print the current query string
  quit`

func newBrowseCmd(root *rootOptions) *cobra.Command {
	var stateFile string

	cmd := &cobra.Command{
		Use:   "browse [query]",
		Short: "Browse listings interactively",
		Long: `Browse listings interactively, the way the web page does.

Every change produces a new page query, kept in a history that "back"
walks. With --state-file the latest query is written after each change and
the next session resumes from it when no query argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.client()
			if err != nil {
				return err
			}

			initial := ""
			if len(args) == 1 {
				initial = args[0]
			} else if stateFile != "" {
				data, err := os.ReadFile(stateFile)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					return err
				}
				initial = strings.TrimSpace(string(data))
			}

			var saver filter.Navigator
			if stateFile != "" {
				async := filter.NewAsyncNavigator(func(query string) {
					if err := os.WriteFile(stateFile, []byte(query+"\n"), 0o644); err != nil {
						slog.Warn("failed to save browse state", "file", stateFile, "error", err)
					}
				})
				defer async.Close()
				saver = async
			}

			b := newBrowser(c, cmd.OutOrStdout(), initial, saver)
			defer b.close()
			return b.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&stateFile, "state-file", "", "file that stores the last query between sessions")
	return cmd
}

// browser is one interactive session. The filter store owns the filter
// half of the query, the controller owns mode and selection, and current is
// the combined query of what is on screen.
type browser struct {
	api   *client.Client
	out   io.Writer
	store *filter.Store
	ctrl  *view.Controller
	saver filter.Navigator

	unsubscribe func()

	current string
	history []string
	page    view.Page
}

func newBrowser(api *client.Client, out io.Writer, initialQuery string, saver filter.Navigator) *browser {
	values, _ := url.ParseQuery(strings.TrimPrefix(initialQuery, "?"))
	b := &browser{
		api:   api,
		out:   out,
		ctrl:  view.NewController(view.ParseState(values)),
		saver: saver,
	}
	b.store = filter.NewStore(initialQuery, filter.NavigatorFunc(func(query string) {
		b.navigate(view.Query(filter.ParseQuery(query), b.ctrl.State()))
	}))
	b.unsubscribe = b.store.Subscribe(func(st filter.State) {
		fmt.Fprintf(b.out, "filters: %s\n", describeFilter(st))
	})
	b.current = view.Query(b.store.State(), b.ctrl.State())
	return b
}

func (b *browser) close() {
	b.unsubscribe()
}

// navigate pushes the on-screen query onto history and moves to next
func (b *browser) navigate(next string) {
	if next == b.current {
		return
	}
	b.history = append(b.history, b.current)
	b.current = next
	b.save()
}

func (b *browser) save() {
	if b.saver != nil {
		b.saver.Navigate(b.current)
	}
}

// viewChanged records a mode or selection change made through the controller
func (b *browser) viewChanged() {
	b.navigate(view.Query(b.store.State(), b.ctrl.State()))
}

// refresh loads the page for the current query. The server's canonical
// query replaces the current one without a history entry.
func (b *browser) refresh(ctx context.Context) error {
	page, err := b.api.Listings(ctx, b.current)
	if err != nil {
		return err
	}
	b.page = page

	ids := make([]string, len(page.Listings))
	for i, l := range page.Listings {
		ids[i] = l.ID
	}
	b.ctrl.SetVisible(ids)
	if page.Query != b.current {
		b.current = page.Query
		b.save()
	}
	renderPage(b.out, page)
	return nil
}

func (b *browser) back(ctx context.Context) error {
	if len(b.history) == 0 {
		fmt.Fprintln(b.out, "no earlier page")
		return nil
	}
	prev := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.current = prev
	b.save()

	values, _ := url.ParseQuery(prev)
	b.store.Sync(prev)
	b.ctrl = view.NewController(view.ParseState(values))
	return b.refresh(ctx)
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	if err := b.refresh(ctx); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "pv> ")
		if !sc.Scan() {
			fmt.Fprintln(b.out)
			return sc.Err()
		}
		quit, err := b.exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintf(b.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// exec runs one command line. Errors are reported to the user and the
// session continues.
func (b *browser) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.Join(args, " ")

	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
		return false, nil
	case "url":
		fmt.Fprintf(b.out, "?%s\n", b.current)
		return false, nil
	case "show", "refresh":
		return false, b.refresh(ctx)
	case "back":
		return false, b.back(ctx)
	case "info":
		return false, b.info(ctx, rest)

	case "location", "loc":
		return false, b.updateFilter(ctx, func(s *filter.State) { s.Location = rest })
	case "min", "max":
		n, err := optionalInt64(rest)
		if err != nil {
			return false, err
		}
		return false, b.updateFilter(ctx, func(s *filter.State) {
			if name == "min" {
				s.MinPrice = n
			} else {
				s.MaxPrice = n
			}
		})
	case "beds":
		n, err := optionalInt64(rest)
		if err != nil {
			return false, err
		}
		return false, b.updateFilter(ctx, func(s *filter.State) {
			s.MinBeds = nil
			if n != nil {
				beds := int(*n)
				s.MinBeds = &beds
			}
		})
	case "baths":
		f, err := optionalFloat(rest)
		if err != nil {
			return false, err
		}
		return false, b.updateFilter(ctx, func(s *filter.State) { s.MinBaths = f })
	case "sold":
		return false, b.updateFilter(ctx, func(s *filter.State) {
			switch strings.ToLower(rest) {
			case "on", "true", "yes":
				s.ShowSold = true
			case "off", "false", "no":
				s.ShowSold = false
			default:
				s.ShowSold = !s.ShowSold
			}
		})
	case "clear":
		return false, b.updateFilter(ctx, func(s *filter.State) { *s = filter.State{} })

	case "view", "toggle":
		mode, effects := b.ctrl.Toggle()
		fmt.Fprintf(b.out, "view: %s\n", mode)
		renderEffects(b.out, effects)
		b.viewChanged()
		return false, b.refresh(ctx)
	case "list", "map":
		effects := b.ctrl.SetMode(view.ParseMode(name))
		renderEffects(b.out, effects)
		b.viewChanged()
		return false, b.refresh(ctx)
	case "select", "pin":
		from := view.FromList
		if name == "pin" {
			from = view.FromMap
		}
		return false, b.selectListing(ctx, rest, from)
	case "unselect":
		if b.ctrl.ClearSelection() {
			b.viewChanged()
			return false, b.refresh(ctx)
		}
		return false, nil
	}
	return false, fmt.Errorf("unknown command %q (try help)", name)
}

func (b *browser) updateFilter(ctx context.Context, fn func(*filter.State)) error {
	if _, changed := b.store.Update(fn); !changed {
		fmt.Fprintln(b.out, "no change")
		return nil
	}
	return b.refresh(ctx)
}

func (b *browser) selectListing(ctx context.Context, ref string, from view.Source) error {
	if ref == "" {
		return errors.New("which listing? give a row number or ID")
	}
	id := b.resolve(ref, from)
	effects, err := b.ctrl.Select(id, from)
	if errors.Is(err, view.ErrNotVisible) {
		return fmt.Errorf("listing %s is not on this page", id)
	}
	if err != nil {
		return err
	}
	renderEffects(b.out, effects)
	b.viewChanged()
	return b.refresh(ctx)
}

// resolve maps a 1-based row number to a listing ID. Row numbers count
// markers for map selections and cards otherwise.
func (b *browser) resolve(ref string, from view.Source) string {
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 {
		return ref
	}
	if from == view.FromMap {
		if n <= len(b.page.Markers) {
			return b.page.Markers[n-1].ListingID
		}
		return ref
	}
	if n <= len(b.page.Listings) {
		return b.page.Listings[n-1].ID
	}
	return ref
}

func (b *browser) info(ctx context.Context, ref string) error {
	if ref == "" {
		return errors.New("which listing? give a row number or ID")
	}
	from := view.FromList
	if b.ctrl.Mode() == view.ModeMap {
		from = view.FromMap
	}
	detail, err := b.api.Listing(ctx, b.resolve(ref, from))
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("no listing %s", ref)
		}
		return err
	}

	l := detail.Listing
	fmt.Fprintf(b.out, "%s  (%s)\n", l.Title, l.Status)
	fmt.Fprintf(b.out, "  %s, %s %s %s\n", l.Address, l.City, l.State, l.PostalCode)
	fmt.Fprintf(b.out, "  %s  %d bd / %s ba / %s sqft\n",
		price(l), l.Bedrooms, humanize.Ftoa(l.Bathrooms), humanize.Comma(int64(l.SquareFeet)))
	if l.Description != "" {
		fmt.Fprintf(b.out, "  %s\n", l.Description)
	}
	fmt.Fprintf(b.out, "  agent: %s <%s>\n", detail.Agent.Name, detail.Agent.Email)
	fmt.Fprintf(b.out, "  photos: %d, listed %s\n", len(detail.Images), humanize.Time(l.CreatedAt))
	return nil
}

// optionalInt64 parses a whole number. "", "any" and "-" mean unset.
func optionalInt64(s string) (*int64, error) {
	if unset(s) {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("not a whole number: %q", s)
	}
	return &n, nil
}

func optionalFloat(s string) (*float64, error) {
	if unset(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return &f, nil
}

func unset(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "-":
		return true
	}
	return false
}

func describeFilter(st filter.State) string {
	if st.IsZero() {
		return "none"
	}
	var parts []string
	if st.Location != "" {
		parts = append(parts, fmt.Sprintf("location %q", st.Location))
	}
	if st.MinPrice != nil {
		parts = append(parts, "from $"+humanize.Comma(*st.MinPrice))
	}
	if st.MaxPrice != nil {
		parts = append(parts, "up to $"+humanize.Comma(*st.MaxPrice))
	}
	if st.MinBeds != nil {
		parts = append(parts, fmt.Sprintf("%d+ beds", *st.MinBeds))
	}
	if st.MinBaths != nil {
		parts = append(parts, humanize.Ftoa(*st.MinBaths)+"+ baths")
	}
	if st.ShowSold {
		parts = append(parts, "including sold")
	}
	return strings.Join(parts, ", ")
}
