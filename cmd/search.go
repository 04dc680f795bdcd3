package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/corpus"
	"github.com/maganghub-tools/mh-finder/internal/logger"
	"github.com/maganghub-tools/mh-finder/internal/maganghub"
	"github.com/maganghub-tools/mh-finder/internal/query"
	"github.com/maganghub-tools/mh-finder/internal/ranking"
)

const (
	// Value for --dir meaning every subdirectory of the data root.
	allProvinces = "all"

	PromptReportByCompany = "Report by company"
	PromptResultsToFile   = "Dump results to file"
	PromptExit            = "Exit"

	maxTableCell = 48
)

var searchPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptReportByCompany, PromptResultsToFile, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search saved vacancy pages with free-text or structured filters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("dir", "D", "", "directory with per-page JSON files, or \"all\" for every subdirectory of the data root")
	searchCmd.Flags().StringP("deep", "q", "", "free-text query, whitespace-separated tokens")
	searchCmd.Flags().String("mode", "or", "token combination for --deep: \"and\" (all tokens) or \"or\" (any token)")
	searchCmd.Flags().Int("limit", 0, "maximum number of results, 0 for unlimited")
	searchCmd.Flags().String("kabupaten", "", "kabupaten/province tokens, space-separated, treated as OR")
	searchCmd.Flags().String("program-studi", "", "program studi tokens, space-separated, treated as OR")
	searchCmd.Flags().String("posisi", "", "posisi tokens, space-separated, treated as OR")
	searchCmd.Flags().String("description", "", "description tokens, space-separated, treated as OR")
	searchCmd.Flags().String("gov", "either", "government postings: \"present\", \"absent\" or \"either\"")
	searchCmd.Flags().String("accept", "", "sort results by acceptance probability: \"asc\" or \"desc\"")
	searchCmd.Flags().StringP("out", "o", "", "write enriched results to this JSON file")
	searchCmd.Flags().BoolP("interactive", "i", false, "prompt for actions after printing results")
}

func search(cmd *cobra.Command) error {
	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	flags := cmd.Flags()

	deep, _ := flags.GetString("deep")
	modeFlag, _ := flags.GetString("mode")
	limit, _ := flags.GetInt("limit")
	govFlag, _ := flags.GetString("gov")
	acceptFlag, _ := flags.GetString("accept")
	outFile, _ := flags.GetString("out")
	interactive, _ := flags.GetBool("interactive")

	mode, err := query.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	presence, err := query.ParsePresence(govFlag)
	if err != nil {
		return err
	}

	kabupaten, _ := flags.GetString("kabupaten")
	programStudi, _ := flags.GetString("program-studi")
	posisi, _ := flags.GetString("posisi")
	description, _ := flags.GetString("description")

	structured := query.Structured{
		KabupatenTokens:    query.Tokenize(kabupaten),
		ProgramStudiTokens: query.Tokenize(programStudi),
		PosisiTokens:       query.Tokenize(posisi),
		DescriptionTokens:  query.Tokenize(description),
		Government:         presence,
	}
	tokens := query.Tokenize(deep)

	if !structured.Active() && len(tokens) == 0 {
		return errors.New("either --deep or at least one structured filter (--kabupaten/--program-studi/--posisi/--description/--gov) must be provided")
	}

	dirs, err := searchDirs(cmd, config)
	if err != nil {
		return err
	}

	engine := query.NewEngine(logg)

	var results []maganghub.Record
	for _, dir := range dirs {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(results)
			if remaining <= 0 {
				break
			}
		}

		reader, err := corpus.NewReader(dir, logg)
		if err != nil {
			return err
		}

		switch {
		case len(tokens) > 0 && structured.Active():
			matched := engine.FreeText(reader.Records(), tokens, mode, 0)
			results = append(results, engine.Structured(slices.Values(matched), structured, remaining)...)
		case structured.Active():
			results = append(results, engine.Structured(reader.Records(), structured, remaining)...)
		default:
			results = append(results, engine.FreeText(reader.Records(), tokens, mode, remaining)...)
		}
	}

	if acceptFlag != "" {
		direction, err := ranking.ParseDirection(acceptFlag)
		if err != nil {
			return err
		}
		ranking.SortByMetric(results, ranking.KeyAcceptanceProbability, direction)
	}

	printTable(results)
	fmt.Printf("\nTotal matches: %d\n", len(results))

	if outFile != "" {
		if err := writeEnriched(results, outFile); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		logg.Info("saved results", zap.String("path", outFile))
	}

	if !interactive {
		return nil
	}

	for {
		_, action, err := searchPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptReportByCompany:
			pretty, _ := json.MarshalIndent(ranking.ReportByCompany(results), "", "  ")
			fmt.Println(string(pretty))
		case PromptResultsToFile:
			filename, err := ranking.DumpToTmpFile(results)
			if err != nil {
				return fmt.Errorf("dump results to file: %w", err)
			}
			logg.Info("dumped results to file", zap.String("filename", filename))
		case PromptExit:
			return nil
		}
	}
}

// searchDirs resolves the corpus directories for the scan: the --dir flag, or
// every province subdirectory of the data root when the flag is "all".
func searchDirs(cmd *cobra.Command, config *Config) ([]string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = config.DataDir
	}
	if dir != allProvinces {
		return []string{dir}, nil
	}
	return corpus.ProvinceDirs(config.DataDir)
}

func printTable(results []maganghub.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "posisi\tperusahaan\tkabupaten\tkuota\tterdaftar\taccept%")

	for _, rec := range results {
		cp := rec.Company()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			cellOrDash(rec.String("posisi")),
			cellOrDash(cp.NamaPerusahaan),
			cellOrDash(cp.NamaKabupaten),
			intCell(rec.Int("jumlah_kuota")),
			intCell(rec.Int("jumlah_terdaftar")),
			ranking.AcceptPercent(rec),
		)
	}
	w.Flush()
}

func cellOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return logger.TruncateForLog(s, maxTableCell)
}

func intCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func writeEnriched(results []maganghub.Record, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	enriched := make([]maganghub.Record, 0, len(results))
	for _, rec := range results {
		enriched = append(enriched, ranking.Enrich(rec))
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(enriched)
}
