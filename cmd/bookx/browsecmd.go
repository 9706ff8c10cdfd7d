package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adna-tk/book-explorer/internal/browse"
)

const browseHelp = `Commands:
  s <text>   search (debounced; keep typing, one request fires)
  g <genre>  filter by genre (empty to clear)
  t <type>   filter by book type (empty to clear)
  o <field>  ordering: title, author, published_year, created_at; - for desc
  p <n>      go to page n
  r          refresh
  ?          show this help
  q          quit`

func browseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			ctrl := browse.New(a.catalog, func(s browse.Snapshot) {
				if s.Loading {
					return
				}
				if s.Err != nil {
					fmt.Fprintf(out, "error: %v\n", s.Err)
					return
				}
				printBookPage(out, s.Page)
			}, browse.WithLogger(a.log.With().Str("component", "browse").Logger()))
			defer ctrl.Close()

			fmt.Fprintln(out, browseHelp)
			ctrl.Refresh()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				verb, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
				rest = strings.TrimSpace(rest)
				switch verb {
				case "s":
					ctrl.SetSearch(rest)
				case "g":
					ctrl.SetGenre(rest)
				case "t":
					ctrl.SetBookType(rest)
				case "o":
					ctrl.SetOrdering(rest)
				case "p":
					n, err := strconv.Atoi(rest)
					if err != nil {
						fmt.Fprintf(out, "invalid page %q\n", rest)
						continue
					}
					ctrl.SetPage(n)
				case "r":
					ctrl.Refresh()
				case "?":
					fmt.Fprintln(out, browseHelp)
				case "q":
					return nil
				case "":
				default:
					fmt.Fprintf(out, "unknown command %q (? for help)\n", verb)
				}
			}
			return scanner.Err()
		},
	}
}
