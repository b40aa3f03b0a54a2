package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var digitRuns = regexp.MustCompile(`\d+`)

// naturalLess compares filenames with numeric runs compared numerically, so
// page_2 sorts before page_10.
func naturalLess(a, b string) bool {
	ta, tb := tokenize(a), tokenize(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		if ta[i] == tb[i] {
			continue
		}
		an, aErr := strconv.Atoi(ta[i])
		bn, bErr := strconv.Atoi(tb[i])
		if aErr == nil && bErr == nil {
			if an != bn {
				return an < bn
			}
			continue
		}
		return strings.ToLower(ta[i]) < strings.ToLower(tb[i])
	}
	return len(ta) < len(tb)
}

func tokenize(name string) []string {
	var tokens []string
	start := 0
	for _, loc := range digitRuns.FindAllStringIndex(name, -1) {
		if loc[0] > start {
			tokens = append(tokens, name[start:loc[0]])
		}
		tokens = append(tokens, name[loc[0]:loc[1]])
		start = loc[1]
	}
	if start < len(name) {
		tokens = append(tokens, name[start:])
	}
	return tokens
}

// ResolveImages maps a qa.jsonl url to the image files it names, trying the
// path as given, then under images/, then as a bare stem under images/.
// Directories yield all contained images in natural order.
func ResolveImages(datasetDir, url string) ([]string, error) {
	for _, candidate := range []string{
		filepath.Join(datasetDir, url),
		filepath.Join(datasetDir, "images", url),
	} {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.IsDir() {
			if imgs := listImages(candidate); len(imgs) > 0 {
				return imgs, nil
			}
			continue
		}
		if IsImageName(candidate) {
			return []string{candidate}, nil
		}
	}

	// Bare stem: any extension under images/.
	imagesDir := filepath.Join(datasetDir, "images")
	if entries, err := os.ReadDir(imagesDir); err == nil {
		stem := strings.TrimSuffix(filepath.Base(url), filepath.Ext(url))
		var matches []string
		for _, entry := range entries {
			if entry.IsDir() || !IsImageName(entry.Name()) {
				continue
			}
			name := entry.Name()
			if strings.TrimSuffix(name, filepath.Ext(name)) == stem {
				matches = append(matches, filepath.Join(imagesDir, name))
			}
		}
		if len(matches) > 0 {
			sort.Slice(matches, func(i, j int) bool {
				return naturalLess(filepath.Base(matches[i]), filepath.Base(matches[j]))
			})
			return matches, nil
		}
	}

	return nil, fmt.Errorf("dataset: cannot resolve image or folder for url: %s", url)
}

func listImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var imgs []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageName(entry.Name()) {
			continue
		}
		imgs = append(imgs, filepath.Join(dir, entry.Name()))
	}
	sort.Slice(imgs, func(i, j int) bool {
		return naturalLess(filepath.Base(imgs[i]), filepath.Base(imgs[j]))
	})
	return imgs
}
