package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloud66-oss/geotrace/lookup"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [address...]",
	Short: "Resolve addresses to geolocation, network owner and CDN classification",
	RunE:  execLookup,
}

func init() {
	lookupCmd.Flags().Int("concurrency", 0, "batch worker count (0 = provider default)")
	lookupCmd.Flags().String("file", "", "read addresses from a file, one per line ('-' for stdin)")

	viper.BindPFlag("lookup.concurrency", lookupCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("lookup.file", lookupCmd.Flags().Lookup("file"))

	rootCmd.AddCommand(lookupCmd)
}

func execLookup(cmd *cobra.Command, args []string) error {
	inputs := args

	if file := viper.GetString("lookup.file"); file != "" {
		fromFile, err := readInputs(file)
		if err != nil {
			return err
		}
		inputs = append(inputs, fromFile...)
	}

	if len(inputs) == 0 {
		return fmt.Errorf("no addresses given: pass them as arguments or via --file")
	}

	lookuper, err := lookup.New(lookup.Config{
		Provider:    viper.GetString("provider"),
		APIKey:      viper.GetString("providers.ipinfo.token"),
		DataDir:     viper.GetString("data.dir"),
		Concurrency: viper.GetInt("lookup.concurrency"),
		OnProgress: func(completed, total int) {
			log.Debug().Int("completed", completed).Int("total", total).Msg("lookup progress")
		},
	})
	if err != nil {
		return err
	}
	defer lookuper.Close()

	results := lookuper.Batch(cmd.Context(), inputs)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if len(results) == 1 {
		return encoder.Encode(results[0])
	}

	return encoder.Encode(results)
}

func readInputs(file string) ([]string, error) {
	in := os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var inputs []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}

	return inputs, scanner.Err()
}
