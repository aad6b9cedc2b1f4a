package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgnsrekt/voxcue/internal/voices"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var voicesCmd = &cobra.Command{
	Use:   "voices [QUERY]",
	Short: "List voices or resolve a voice name",
	Long: paragraph(fmt.Sprintf("\n%s the available voices. With a query, show the voice it resolves to; "+
		"names are matched exactly first, then fuzzily.", keyword("List"))),
	Example: paragraph("voxcue voices\nvoxcue voices --locale zh\nvoxcue voices xiaoxiao"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := loadCatalog(cmd.Context())
		if locale, _ := cmd.Flags().GetString("locale"); locale != "" {
			catalog = catalog.Locale(locale)
		}

		styled := term.IsTerminal(int(os.Stdout.Fd()))
		if len(args) == 1 {
			v, err := catalog.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderVoice(v, styled))
			return nil
		}

		for _, v := range catalog {
			fmt.Fprintln(cmd.OutOrStdout(), renderVoice(v, styled))
		}
		return nil
	},
}

func renderVoice(v voices.Voice, styled bool) string {
	name := fmt.Sprintf("%-28s", v.ShortName)
	if styled {
		name = keyword(name)
	}
	line := fmt.Sprintf("%s %-6s %-6s", name, v.Locale, v.Gender)
	if len(v.Styles) > 0 {
		styles := truncate.StringWithTail(strings.Join(v.Styles, ", "), 60, "…")
		if styled {
			styles = subtleStyle.Render(styles)
		}
		line += " " + styles
	}
	return strings.TrimRight(line, " ")
}

func init() {
	voicesCmd.Flags().String("locale", "", "only list voices whose locale starts with this prefix")
}
