package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	categoryRetail         = "Retail"
	categoryCatering       = "Catering-Services"
	categoryAdministrative = "Administrative"
	categoryAccommodation  = "Accommodation"
	categoryMedical        = "Medical-Services"
	categoryCommercial     = "Commercial"
	categoryNutrition      = "Nutrition-Label"
	categoryEducation      = "Education"
	categoryAdvertisement  = "Advertisement"
	categoryPostal         = "Postal-Label"
	categoryTax            = "Tax-Compliant"
)

const funsdURL = "https://guillaumejaume.github.io/FUNSD/dataset.zip"
const poieDriveID = "1eEMNiVeLlD-b08XW_GfAGfPmmII-GDYs"
const sibrGitURL = "https://www.modelscope.cn/datasets/iic/SIBR.git"

// ensureExtracted unpacks the archive into dest unless dest already holds
// images from a previous run.
func ensureExtracted(archivePath, dest string) (*Index, error) {
	if ix, err := BuildIndex(dest); err == nil && ix.HasImages() {
		return ix, nil
	}
	if err := Extract(archivePath, dest); err != nil {
		return nil, err
	}
	return BuildIndex(dest)
}

func indexFromMap(m map[string]string) *Index {
	ix := &Index{}
	for name, path := range m {
		ix.files = append(ix.files, indexedFile{name: name, path: path})
	}
	return ix
}

func mergeResults(results ...Result) Result {
	var total Result
	for _, r := range results {
		total.Copied += r.Copied
		total.Missing = append(total.Missing, r.Missing...)
	}
	return total
}

func sroieConverter() Converter {
	return Converter{
		Name:        "sroie",
		Categories:  []string{categoryRetail},
		Description: "SROIE receipt scans from the task-3 test archive",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			archive := filepath.Join(opts.SourceDir, "SROIE", "SROIE_test_images_task_3.zip")
			ix, err := ensureExtracted(archive, filepath.Join(opts.SourceDir, "SROIE", "extracted"))
			if err != nil {
				return Result{}, err
			}
			return copyLabelImages(opts, categoryRetail, ix, false)
		},
	}
}

func cellConverter() Converter {
	return Converter{
		Name:        "cell",
		Categories:  []string{categoryCatering, categoryAdministrative, categoryEducation},
		Description: "CELL task-1 test images layered into multi-source categories",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			archive := filepath.Join(opts.SourceDir, "CELL", "task1_test_imgs.zip")
			ix, err := ensureExtracted(archive, filepath.Join(opts.SourceDir, "CELL", "extracted"))
			if err != nil {
				return Result{}, err
			}
			// These categories mix sources. Loose matching would collide,
			// e.g. "1492" against EPHOIE's img_1492.jpg or "28" against
			// CORD's test_28.jpg, so only exact lookups are allowed here.
			var results []Result
			for _, category := range []string{categoryCatering, categoryAdministrative, categoryEducation} {
				res, err := copyLabelImages(opts, category, ix, true)
				if err != nil {
					return Result{}, err
				}
				results = append(results, res)
			}
			return mergeResults(results...), nil
		},
	}
}

func funsdConverter() Converter {
	return Converter{
		Name:        "funsd",
		Categories:  []string{categoryAdministrative},
		Description: "FUNSD form scans downloaded from the project page",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			archive := filepath.Join(opts.SourceDir, "FUNSD", "dataset.zip")
			if err := Download(ctx, funsdURL, archive); err != nil {
				return Result{}, err
			}
			extractDir := filepath.Join(opts.SourceDir, "FUNSD", "extracted")
			ix, err := ensureExtracted(archive, extractDir)
			if err != nil {
				return Result{}, err
			}
			if !ix.HasImages() {
				// The distribution nests further archives inside dataset.zip.
				if err := ExtractNested(extractDir); err != nil {
					return Result{}, err
				}
				if ix, err = BuildIndex(extractDir); err != nil {
					return Result{}, err
				}
			}
			return copyLabelImages(opts, categoryAdministrative, ix, false)
		},
	}
}

func poieConverter() Converter {
	return Converter{
		Name:        "poie",
		Categories:  []string{categoryNutrition},
		Description: "POIE nutrition labels fetched from the published Drive archive",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			archive := filepath.Join(opts.SourceDir, "POIE", "poie.zip")
			if err := Download(ctx, GoogleDriveURL(poieDriveID), archive); err != nil {
				return Result{}, err
			}
			ix, err := ensureExtracted(archive, filepath.Join(opts.SourceDir, "POIE", "extracted"))
			if err != nil {
				return Result{}, err
			}
			return copyLabelImages(opts, categoryNutrition, ix, false)
		},
	}
}

func sibrConverter() Converter {
	return Converter{
		Name:        "sibr",
		Categories:  []string{categoryAccommodation, categoryMedical, categoryCommercial},
		Description: "SIBR bills and receipts from the cloned ModelScope tree",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			sibrDir := filepath.Join(opts.SourceDir, "SIBR")
			if _, err := os.Stat(sibrDir); err != nil {
				return Result{}, fmt.Errorf("convert: SIBR source not found, clone %s into %s first", sibrGitURL, sibrDir)
			}
			treeIx, err := BuildIndex(sibrDir)
			if err != nil {
				return Result{}, err
			}
			zipPath, ok := treeIx.Find("images.zip")
			if !ok {
				return Result{}, fmt.Errorf("convert: images.zip not found under %s", sibrDir)
			}
			ix, err := ensureExtracted(zipPath, filepath.Join(sibrDir, "extracted"))
			if err != nil {
				return Result{}, err
			}
			var results []Result
			for _, category := range []string{categoryAccommodation, categoryMedical, categoryCommercial} {
				res, err := copyLabelImages(opts, category, ix, false)
				if err != nil {
					return Result{}, err
				}
				results = append(results, res)
			}
			return mergeResults(results...), nil
		},
	}
}

func cordConverter() Converter {
	return Converter{
		Name:        "cord",
		Categories:  []string{categoryCatering},
		Description: "CORD v2 receipts extracted from the test parquet shard",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			cordDir := filepath.Join(opts.SourceDir, "CORD")
			shards, err := FindParquetFiles(cordDir, "data/test")
			if err != nil {
				return Result{}, err
			}
			if len(shards) == 0 {
				if shards, err = FindParquetFiles(cordDir, ""); err != nil {
					return Result{}, err
				}
			}
			if len(shards) == 0 {
				return Result{}, fmt.Errorf("convert: no parquet shards under %s", cordDir)
			}
			imageMap, err := ExtractParquetImages(shards[0], filepath.Join(cordDir, "images"), func(idx int) string {
				return fmt.Sprintf("test_%d.jpg", idx)
			})
			if err != nil {
				return Result{}, err
			}
			return copyLabelImages(opts, categoryCatering, indexFromMap(imageMap), false)
		},
	}
}

func hwFormsConverter() Converter {
	return Converter{
		Name:        "hw-forms",
		Categories:  []string{categoryPostal},
		Description: "Handwriting-forms pages extracted from the parquet shard",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			return parquetConverterRun(opts, "Hw-Forms", categoryPostal, func(idx int) string {
				return fmt.Sprintf("%d.png", idx)
			})
		},
	}
}

func nanonetsConverter() Converter {
	return Converter{
		Name:        "nanonets-kie",
		Categories:  []string{categoryTax},
		Description: "Nanonets KIE invoices extracted from the parquet shards",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			return parquetConverterRun(opts, "Nanonets-KIE", categoryTax, func(idx int) string {
				return fmt.Sprintf("%d.jpeg", idx)
			})
		},
	}
}

func parquetConverterRun(opts Options, sourceName, category string, nameFor func(int) string) (Result, error) {
	srcDir := filepath.Join(opts.SourceDir, sourceName)
	shards, err := FindParquetFiles(srcDir, "")
	if err != nil {
		return Result{}, err
	}
	if len(shards) == 0 {
		return Result{}, fmt.Errorf("convert: no parquet shards under %s", srcDir)
	}
	imagesDir := filepath.Join(srcDir, "images")
	all := make(map[string]string)
	idx := 0
	for _, shard := range shards {
		m, err := ExtractParquetImages(shard, imagesDir, func(int) string {
			name := nameFor(idx)
			idx++
			return name
		})
		if err != nil {
			return Result{}, err
		}
		for name, path := range m {
			all[name] = path
		}
	}
	return copyLabelImages(opts, category, indexFromMap(all), false)
}

func ephoieConverter() Converter {
	return Converter{
		Name:        "ephoie",
		Categories:  []string{categoryEducation},
		Description: "EPHOIE exam headers decoded from the CC-OCR TSV dump",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			srcDir := filepath.Join(opts.SourceDir, "EPHOIE")
			tsvPath, err := findTSV(srcDir)
			if err != nil {
				return Result{}, err
			}
			imageMap, err := ExtractTSVImages(tsvPath, filepath.Join(srcDir, "extracted_images"))
			if err != nil {
				return Result{}, err
			}
			return copyExactNames(opts, categoryEducation, imageMap)
		},
	}
}

func findTSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("convert: EPHOIE source not found: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".tsv" {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("convert: no .tsv file under %s", dir)
}

// copyExactNames copies only label keys whose exact filename exists in the
// extracted map. The Education category mixes EPHOIE with CELL, so anything
// looser would cross sources.
func copyExactNames(opts Options, category string, imageMap map[string]string) (Result, error) {
	names, err := labelImageNames(opts.DatasetsDir, category)
	if err != nil {
		return Result{}, err
	}
	imagesDir := filepath.Join(opts.DatasetsDir, category, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return Result{}, err
	}
	var res Result
	for _, name := range names {
		src, ok := imageMap[name]
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}
		if err := copyFile(src, filepath.Join(imagesDir, name)); err != nil {
			res.Missing = append(res.Missing, name)
			continue
		}
		res.Copied++
	}
	return res, nil
}

func docileConverter() Converter {
	return Converter{
		Name:        "docile",
		Categories:  []string{categoryCommercial},
		Description: "DocILE invoices rendered page by page from the PDF collection",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			pdfsDir := filepath.Join(opts.SourceDir, "docile", "pdfs")
			ix, err := BuildIndex(pdfsDir)
			if err != nil {
				return Result{}, fmt.Errorf("convert: docile PDFs not found: %w", err)
			}
			names, err := labelDocNames(opts.DatasetsDir, categoryCommercial)
			if err != nil {
				return Result{}, err
			}
			imagesDir := filepath.Join(opts.DatasetsDir, categoryCommercial, "images")

			var res Result
			for _, name := range names {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				docDir := filepath.Join(imagesDir, name)
				if dirIx, err := BuildIndex(docDir); err == nil && dirIx.HasImages() {
					res.Copied++
					continue
				}
				pdfPath, ok := ix.FindPDF(name)
				if !ok {
					res.Missing = append(res.Missing, name)
					continue
				}
				pages, err := RenderPDF(pdfPath, docDir)
				if err != nil || pages == 0 {
					fmt.Fprintf(opts.log(), "convert: docile: render %s: %v\n", name, err)
					res.Missing = append(res.Missing, name)
					continue
				}
				res.Copied++
			}
			return res, nil
		},
	}
}

func deepformConverter() Converter {
	return Converter{
		Name:        "deepform",
		Categories:  []string{categoryAdvertisement},
		Description: "DeepForm disclosures rendered first page only from PDFs",
		Run: func(ctx context.Context, opts Options) (Result, error) {
			pdfsDir := filepath.Join(opts.SourceDir, "DeepForm")
			ix, err := BuildIndex(pdfsDir)
			if err != nil {
				return Result{}, fmt.Errorf("convert: DeepForm PDFs not found: %w", err)
			}
			names, err := labelImageNames(opts.DatasetsDir, categoryAdvertisement)
			if err != nil {
				return Result{}, err
			}
			imagesDir := filepath.Join(opts.DatasetsDir, categoryAdvertisement, "images")

			var res Result
			for _, name := range names {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				dest := filepath.Join(imagesDir, name)
				if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
					res.Copied++
					continue
				}
				pdfPath, ok := ix.FindPDF(name)
				if !ok {
					res.Missing = append(res.Missing, name)
					continue
				}
				if err := RenderFirstPage(pdfPath, dest); err != nil {
					fmt.Fprintf(opts.log(), "convert: deepform: render %s: %v\n", name, err)
					res.Missing = append(res.Missing, name)
					continue
				}
				res.Copied++
			}
			return res, nil
		},
	}
}
