package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xaml-go/xaml"
	"github.com/xaml-go/xaml/html"
	"github.com/xaml-go/xaml/xml"
)

func newRenderCmd(a *app) *cobra.Command {
	var output, markup string
	var page int
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a Xaml document as XML or HTML",
		Long: `Render writes the pages of a document, separated by a newline. Pages of doc type html
are written as HTML, the others as XML, unless --markup is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if markup != "" && markup != "xml" && markup != "html" {
				return fmt.Errorf("unknown markup %q, expected xml or html", markup)
			}
			doc, err := a.parseFile(cmd, args[0])
			if err != nil {
				return err
			}
			pages := doc.Pages
			if page != 0 {
				if page < 1 || len(pages) < page {
					return fmt.Errorf("%s: page %d out of range, document has %d pages", args[0], page, len(pages))
				}
				pages = pages[page-1 : page]
			}

			buf := &bytes.Buffer{}
			if err := a.renderPages(buf, pages, markup); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			a.logger.Info("rendered document", "file", args[0], "output", output, "pages", len(pages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default is stdout)")
	cmd.Flags().IntVar(&page, "page", 0, "render only the n-th page, counting from 1")
	cmd.Flags().StringVar(&markup, "markup", "", "render as xml or html regardless of the doc type")
	return cmd
}

// renderPages writes pages separated and terminated by a newline.
func (a *app) renderPages(w io.Writer, pages []*xaml.Page, markup string) error {
	o := a.renderOptions()
	for i, page := range pages {
		if 0 < i {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := newRenderer(page, markup, o).Render(w, page); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func newRenderer(page *xaml.Page, markup string, o xml.Options) *xml.Renderer {
	if markup == "" && page.DocType() == "html" || markup == "html" {
		return html.NewRenderer(o)
	}
	return xml.NewRenderer(o)
}

// outputPath returns the file a document is rendered to, next to it or in dir.
func outputPath(path, dir string, doc *xaml.Document) string {
	ext := ".xml"
	if 0 < len(doc.Pages) && doc.Pages[0].DocType() == "html" {
		ext = ".html"
	}
	base := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if dir == "" {
		return base
	}
	return filepath.Join(dir, filepath.Base(base))
}
