package utils

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DownloadFile fetches url into dest. It honours an ETag file next to
// dest to skip downloads when the remote file has not changed, and
// writes through a tmp file so a failed download never leaves a
// corrupt database behind.
func DownloadFile(url string, dest string) error {
	headResp, err := http.Head(url)
	if err != nil {
		return fmt.Errorf("failed to HEAD %s: %w", url, err)
	}
	defer headResp.Body.Close()

	eTag := strings.Trim(headResp.Header.Get("ETag"), "\"")
	eTagFilename := ChangeExt(dest, "etag")
	if eTag != "" && FileExists(eTagFilename) {
		readEtag, err := os.ReadFile(eTagFilename)
		if err != nil {
			log.Error().Err(err).Msg("failed to read etag file, will re-download")
		} else if string(readEtag) == eTag {
			log.Info().Str("filename", dest).Msg("no file change detected")
			return nil
		}
	}

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed with status %d", url, resp.StatusCode)
	}

	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	// atomically move the tmp file into place
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if eTag != "" {
		if err := os.WriteFile(eTagFilename, []byte(eTag), 0644); err != nil {
			log.Error().Err(err).Msg("failed to write etag file")
		}
	}

	return nil
}

// DownloadMaxMindDb downloads a database edition directly from
// MaxMind's API using HTTP Basic Auth. The response is a tar.gz
// archive containing the .mmdb file, which is extracted to dest.
func DownloadMaxMindDb(accountID, licenseKey, editionID, dest string) error {
	if licenseKey == "" {
		return fmt.Errorf("MaxMind license_key is required for direct download")
	}
	if accountID == "" {
		return fmt.Errorf("MaxMind account_id is required when license_key is set")
	}
	if editionID == "" {
		return fmt.Errorf("MaxMind edition ID is required for direct download")
	}

	url := fmt.Sprintf("https://download.maxmind.com/geoip/databases/%s/download?suffix=tar.gz", editionID)
	return downloadMaxMindDbFromURL(url, accountID, licenseKey, editionID, dest)
}

// downloadMaxMindDbFromURL is separated from DownloadMaxMindDb so tests
// can point it at an httptest server.
func downloadMaxMindDbFromURL(url, accountID, licenseKey, editionID, dest string) error {
	// HEAD must not follow the redirect to object storage: the redirect
	// target strips auth headers and the ETag comes from MaxMind itself.
	noRedirectClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	headReq, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create HEAD request: %w", err)
	}
	headReq.SetBasicAuth(accountID, licenseKey)

	headResp, err := noRedirectClient.Do(headReq)
	if err != nil {
		return fmt.Errorf("failed to HEAD MaxMind API: %w", err)
	}
	defer headResp.Body.Close()

	if headResp.StatusCode != http.StatusOK && (headResp.StatusCode < 300 || headResp.StatusCode >= 400) {
		return fmt.Errorf("MaxMind HEAD request failed with status %d", headResp.StatusCode)
	}

	eTag := strings.Trim(headResp.Header.Get("ETag"), "\"")
	eTagFilename := ChangeExt(dest, "etag")
	if eTag != "" && FileExists(eTagFilename) {
		readEtag, err := os.ReadFile(eTagFilename)
		if err != nil {
			log.Error().Err(err).Msg("failed to read etag file, will re-download")
		} else if string(readEtag) == eTag {
			log.Info().Str("edition", editionID).Msg("no database change detected")
			return nil
		}
	}

	getReq, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}
	getReq.SetBasicAuth(accountID, licenseKey)

	getResp, err := http.DefaultClient.Do(getReq)
	if err != nil {
		return fmt.Errorf("failed to GET MaxMind database: %w", err)
	}
	defer getResp.Body.Close()

	if getResp.StatusCode != http.StatusOK {
		return fmt.Errorf("MaxMind GET request failed with status %d", getResp.StatusCode)
	}

	tarGzTmp := dest + ".tar.gz.tmp"
	tarGzFile, err := os.Create(tarGzTmp)
	if err != nil {
		return fmt.Errorf("failed to create temp tar.gz file: %w", err)
	}

	_, err = io.Copy(tarGzFile, getResp.Body)
	tarGzFile.Close()
	if err != nil {
		os.Remove(tarGzTmp)
		return fmt.Errorf("failed to download tar.gz: %w", err)
	}

	mmdbTmp := dest + ".tmp"
	err = extractMmdbFromTarGz(tarGzTmp, mmdbTmp)
	os.Remove(tarGzTmp)
	if err != nil {
		os.Remove(mmdbTmp)
		return fmt.Errorf("failed to extract mmdb from tar.gz: %w", err)
	}

	if err := os.Rename(mmdbTmp, dest); err != nil {
		os.Remove(mmdbTmp)
		return fmt.Errorf("failed to rename mmdb to destination: %w", err)
	}

	if err := os.WriteFile(eTagFilename, []byte(eTag), 0644); err != nil {
		log.Error().Err(err).Msg("failed to write etag file")
	}

	log.Info().Str("edition", editionID).Str("dest", dest).Msg("database downloaded")
	return nil
}

// extractMmdbFromTarGz extracts the first .mmdb file in the archive.
func extractMmdbFromTarGz(tarGzPath, destPath string) error {
	f, err := os.Open(tarGzPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || filepath.Ext(header.Name) != ".mmdb" {
			continue
		}

		out, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}

		_, err = io.Copy(out, tr)
		out.Close()
		if err != nil {
			return fmt.Errorf("failed to extract mmdb: %w", err)
		}

		return nil
	}

	return fmt.Errorf("no .mmdb file found in archive")
}
