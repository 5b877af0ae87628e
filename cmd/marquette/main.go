// marquette is a command-line tool for placing text boxes on PDF pages and
// saving them as free-text annotations.
//
// Box positions come from a YAML box description or from an hOCR file, both
// measured in pixels against the rendered page. Annotations are written as an
// incremental update, so the original file's bytes are preserved and the
// boxes stay editable in any PDF viewer. Alternatively the boxes can be
// flattened into the page content for viewers that ignore annotations.
//
// Usage:
//
//	marquette -pdf document.pdf [options]
//
// Required flags:
//
//	-pdf string       Path to the PDF to annotate
//
// Input options (one required unless -detect is set):
//
//	-boxes string     Path to a YAML box description
//	-hocr string      Path to an hOCR file; each recognized line becomes a box
//
// Processing options:
//
//	-output string    Output PDF path (default: annotate in place)
//	-zoom float       Zoom the box coordinates were measured at (default 2.0)
//	-flatten          Paint the boxes into the page content instead of
//	                  attaching annotations
//	-detect           Only report existing free-text annotations and exit
//	-force            Annotate even if free-text annotations are already present
//	-overwrite        Overwrite the output PDF if it already exists
//
// Examples:
//
// Annotate a PDF from a box description:
//
//	marquette -pdf scan.pdf -boxes boxes.yaml -output scan_annotated.pdf
//
// Turn OCR lines into editable annotations:
//
//	marquette -pdf scan.pdf -hocr scan.hocr -output scan_annotated.pdf
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/marquette/marquette/pkg/boxfile"
	"github.com/marquette/marquette/pkg/session"
)

func main() {
	pdfPath := flag.String("pdf", "", "Path to the PDF to annotate")
	boxesPath := flag.String("boxes", "", "Path to a YAML box description")
	hocrPath := flag.String("hocr", "", "Path to an hOCR file")
	outputPath := flag.String("output", "", "Output PDF path (default: annotate in place)")
	zoom := flag.Float64("zoom", 0, "Zoom the box coordinates were measured at")
	flatten := flag.Bool("flatten", false, "Paint the boxes into the page content")
	detect := flag.Bool("detect", false, "Only report existing free-text annotations")
	force := flag.Bool("force", false, "Annotate even if free-text annotations already exist")
	overwriteOutput := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Println("Error: Must provide -pdf path")
		os.Exit(1)
	}
	if !*detect && *boxesPath == "" && *hocrPath == "" {
		fmt.Println("Error: Must provide either -boxes or -hocr")
		os.Exit(1)
	}
	if *boxesPath != "" && *hocrPath != "" {
		fmt.Println("Error: -boxes and -hocr are mutually exclusive")
		os.Exit(1)
	}

	cfg := session.DefaultConfig()
	if *zoom > 0 {
		cfg.DefaultZoom = *zoom
	}

	s, err := session.Open(*pdfPath, nil, cfg)
	if err != nil {
		fmt.Printf("Failed to open PDF: %v\n", err)
		os.Exit(1)
	}

	existing, err := s.DetectExisting()
	if err != nil {
		fmt.Printf("Failed to scan PDF: %v\n", err)
		os.Exit(1)
	}
	if *detect {
		if existing.HasFreeText {
			fmt.Printf("%s has %d free-text annotation(s)\n", *pdfPath, existing.Count)
		} else {
			fmt.Printf("%s has no free-text annotations\n", *pdfPath)
		}
		return
	}
	if existing.HasFreeText && !*force {
		fmt.Printf("%s already has %d free-text annotation(s). Use -force to annotate anyway.\n",
			*pdfPath, existing.Count)
		os.Exit(1)
	}

	bf, err := loadBoxes(*boxesPath, *hocrPath)
	if err != nil {
		fmt.Printf("Failed to load boxes: %v\n", err)
		os.Exit(1)
	}

	applied, skipped, err := s.ApplyBoxes(bf)
	if err != nil {
		fmt.Printf("Failed to place boxes: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Placed %d box(es), skipped %d\n", applied, skipped)

	out := *outputPath
	if out == "" {
		out = *pdfPath
	}
	if out != *pdfPath {
		if _, err := os.Stat(out); err == nil {
			if !*overwriteOutput {
				fmt.Printf("Output file %s already exists. Use -overwrite to overwrite.\n", out)
				os.Exit(1)
			}
			os.Remove(out)
		}
	}

	if *flatten {
		if err := s.ExportFlattened(out); err != nil {
			fmt.Printf("Failed to flatten boxes: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Flattened PDF created:", out)
		return
	}

	if err := s.SaveAs(out); err != nil {
		fmt.Printf("Failed to save annotations: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Annotated PDF created:", out)
}

// loadBoxes reads the box source. hOCR input becomes a box description with
// no zoom of its own, so the session zoom governs the coordinates.
func loadBoxes(boxesPath, hocrPath string) (*boxfile.File, error) {
	if boxesPath != "" {
		return boxfile.LoadYAML(boxesPath)
	}
	data, err := os.ReadFile(hocrPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", hocrPath, err)
	}
	entries, err := boxfile.ParseHOCR(data)
	if err != nil {
		return nil, err
	}
	return &boxfile.File{Boxes: entries}, nil
}
