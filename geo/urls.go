package geo

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	BaseURL     = "https://www.ncbi.nlm.nih.gov"
	DownloadURL = BaseURL + "/geo/download/?"
	FTPURL      = "https://ftp.ncbi.nlm.nih.gov/geo"
)

// CountURL returns the location of the NCBI-generated count matrix of a series.
func CountURL(acc string, norm CountNorm, annotVer string) (string, error) {
	countType, err := norm.fileType()
	if err != nil {
		return "", err
	}

	return DownloadURL + fmt.Sprintf("type=rnaseq_counts&acc=%s&format=file&file=%s_%s_%s_NCBI.tsv.gz", acc, acc, countType, annotVer), nil
}

// AnnotationURL returns the location of the gene annotation table that
// accompanies the NCBI-generated counts.
func AnnotationURL(species, annotVer string) string {
	return DownloadURL + fmt.Sprintf("format=file&type=rnaseq_counts&file=%s.%s.annot.tsv.gz", species, annotVer)
}

// SeriesSOFTURL returns the location of the SOFT family file of a series. GEO
// shards series directories by replacing the last three digits with "nnn".
func SeriesSOFTURL(acc string) string {
	digits := strings.TrimPrefix(acc, SeriesPrefix)
	stub := SeriesPrefix + "nnn"
	if len(digits) > 3 {
		stub = SeriesPrefix + digits[:len(digits)-3] + "nnn"
	}

	return fmt.Sprintf("%s/series/%s/%s/soft/%s", FTPURL, stub, acc, SeriesSOFTFilename(acc))
}

// SeriesSOFTFilename is the name of the SOFT family file of a series.
func SeriesSOFTFilename(acc string) string {
	return acc + "_family.soft.gz"
}

// FilenameFromURL returns the value of the query parameter named key, which
// NCBI uses to carry the file name. URLs without that parameter fall back to
// the last path element.
func FilenameFromURL(rawURL, key string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("Cannot parse filename from %s: %w", rawURL, err)
	}

	if name := u.Query().Get(key); name != "" {
		return path.Base(name), nil
	}

	if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
		return base, nil
	}

	return "", fmt.Errorf("Cannot parse filename from: %s", rawURL)
}
