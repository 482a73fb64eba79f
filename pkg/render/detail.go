package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/testdrive/adocreport/pkg/fsutil"
	"github.com/testdrive/adocreport/pkg/report"
)

// caseDetail is the structured detail a test may emit on its stdout:
// a JSON object carrying at least a result and a reason, optionally a
// list of plot images and an analysis map.
type caseDetail struct {
	images []imageItem
	tables []analysisTable
}

type imageItem struct {
	Title string
	Path  string
}

type analysisTable struct {
	Title string
	Rows  map[string]string
}

// writeDetail renders the captured output of a case, if any. Output that
// parses as a detail object becomes image blocks and analysis tables; any
// other non-empty output is preserved as a literal block.
func writeDetail(sb *strings.Builder, c *report.Case, assetsDir string) error {
	if c.Stdout == "" {
		return nil
	}

	detail, ok := parseDetail(c.Stdout)
	if !ok {
		writeLiteralBlock(sb, c.Stdout)

		return nil
	}

	for _, img := range detail.images {
		target, err := stageImage(img.Path, assetsDir)
		if err != nil {
			return err
		}

		title := img.Title
		if title == "" {
			title = filepath.Base(img.Path)
		}

		sb.WriteByte('\n')
		fmt.Fprintf(sb, ".%s\n", escapeCell(title))
		fmt.Fprintf(sb, "image::%s[]\n", target)
	}

	for _, table := range detail.tables {
		sb.WriteByte('\n')
		fmt.Fprintf(sb, ".%s\n", escapeCell(table.Title))
		sb.WriteString("[cols=\"1,4\"]\n")
		sb.WriteString("|===\n")

		keys := make([]string, 0, len(table.Rows))
		for k := range table.Rows {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			writeRow(sb, "*"+escapeCell(k)+"*", escapeCell(table.Rows[k]))
		}

		sb.WriteString("\n|===\n")
	}

	return nil
}

// stageImage copies an image into assetsDir/images under a fresh unique
// name so independently produced plots cannot collide, and returns the
// image target to reference. Without an assets directory the original
// path is referenced in place.
func stageImage(path, assetsDir string) (string, error) {
	if assetsDir == "" {
		return path, nil
	}

	name := uuid.NewString() + filepath.Ext(path)
	target := filepath.Join(assetsDir, "images", name)

	if err := fsutil.CopyFile(path, target); err != nil {
		return "", fmt.Errorf("staging image %s: %w", path, err)
	}

	return name, nil
}

func writeLiteralBlock(sb *strings.Builder, text string) {
	sb.WriteString("\n....\n")
	sb.WriteString(text)
	sb.WriteString("\n....\n")
}

// parseDetail reports whether stdout carries a detail object. A detail
// object must have both result and reason keys; anything else is plain
// output.
func parseDetail(stdout string) (*caseDetail, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &obj); err != nil {
		return nil, false
	}

	if _, ok := obj["result"]; !ok {
		return nil, false
	}

	if _, ok := obj["reason"]; !ok {
		return nil, false
	}

	detail := &caseDetail{}

	if raw, ok := obj["plot"]; ok {
		images, ok := parsePlot(raw)
		if !ok {
			return nil, false
		}

		detail.images = images
	}

	if raw, ok := obj["analysis"]; ok {
		tables, ok := parseAnalysis(raw)
		if !ok {
			return nil, false
		}

		detail.tables = tables
	}

	return detail, true
}

// parsePlot accepts a list of image items, each either a path string or
// an object with a path and an optional title.
func parsePlot(raw json.RawMessage) ([]imageItem, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	images := make([]imageItem, 0, len(items))

	for _, item := range items {
		var path string
		if err := json.Unmarshal(item, &path); err == nil {
			images = append(images, imageItem{Path: path})

			continue
		}

		var obj struct {
			Title string `json:"title"`
			Path  string `json:"path"`
		}

		if err := json.Unmarshal(item, &obj); err != nil || obj.Path == "" {
			return nil, false
		}

		images = append(images, imageItem{Title: obj.Title, Path: obj.Path})
	}

	return images, true
}

// parseAnalysis splits an analysis map into tables: map values become
// their own titled table, scalar and string-list values are folded into a
// leading "analysis" table.
func parseAnalysis(raw json.RawMessage) ([]analysisTable, bool) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	var tables []analysisTable

	scalars := make(map[string]string)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, key := range keys {
		switch val := obj[key].(type) {
		case map[string]any:
			rows := make(map[string]string, len(val))
			for k, v := range val {
				rows[k] = fmt.Sprint(v)
			}

			tables = append(tables, analysisTable{Title: key, Rows: rows})
		case []any:
			lines := make([]string, 0, len(val))

			for _, entry := range val {
				s, ok := entry.(string)
				if !ok {
					return nil, false
				}

				lines = append(lines, s)
			}

			scalars[key] = strings.Join(lines, "\n")
		default:
			scalars[key] = fmt.Sprint(val)
		}
	}

	if len(scalars) > 0 {
		tables = append([]analysisTable{{Title: "analysis", Rows: scalars}}, tables...)
	}

	return tables, true
}
