package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloud66-oss/geotrace/provider"
	"github.com/cloud66-oss/geotrace/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the city and ASN databases into the data directory",
	RunE:  execFetch,
}

func init() {
	fetchCmd.Flags().String("account-id", "", "MaxMind account ID")
	fetchCmd.Flags().String("license-key", "", "MaxMind license key")
	fetchCmd.Flags().String("city-url", "", "mirror URL for the city database")
	fetchCmd.Flags().String("asn-url", "", "mirror URL for the ASN database")

	viper.BindPFlag("maxmind.account_id", fetchCmd.Flags().Lookup("account-id"))
	viper.BindPFlag("maxmind.license_key", fetchCmd.Flags().Lookup("license-key"))
	viper.BindPFlag("download.city", fetchCmd.Flags().Lookup("city-url"))
	viper.BindPFlag("download.asn", fetchCmd.Flags().Lookup("asn-url"))

	viper.SetDefault("maxmind.editions.city", "GeoLite2-City")
	viper.SetDefault("maxmind.editions.asn", "GeoLite2-ASN")

	rootCmd.AddCommand(fetchCmd)
}

func execFetch(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("data.dir")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	databases := []struct {
		name string
		file string
	}{
		{"city", provider.CityDatabaseFile},
		{"asn", provider.ASNDatabaseFile},
	}

	for _, db := range databases {
		dest := filepath.Join(dir, db.file)

		if licenseKey := viper.GetString("maxmind.license_key"); licenseKey != "" {
			edition := viper.GetString(fmt.Sprintf("maxmind.editions.%s", db.name))
			log.Info().Str("edition", edition).Str("dest", dest).Msg("downloading from MaxMind")

			if err := utils.DownloadMaxMindDb(viper.GetString("maxmind.account_id"), licenseKey, edition, dest); err != nil {
				return err
			}
			continue
		}

		url := viper.GetString(fmt.Sprintf("download.%s", db.name))
		if url == "" {
			log.Warn().Str("db", db.name).Msg("no license key or mirror URL configured, skipping")
			continue
		}

		log.Info().Str("source", url).Str("dest", dest).Msg("downloading")
		if err := utils.DownloadFile(url, dest); err != nil {
			return err
		}
	}

	return nil
}
