package export

import (
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// BoardMarkdown renders the view model as a Markdown report: one table per
// stage column, a Mermaid flowchart of the tile connections and a list of
// rows the builder dropped.
func BoardMarkdown(vm viewmodel.ViewModel, title string) string {
	var sb strings.Builder
	if strings.TrimSpace(title) == "" {
		title = "Stage Board"
	}
	sb.WriteString("# " + title + "\n\n")

	byCol := make(map[model.Column][]model.Tile)
	for _, t := range vm.Tiles {
		byCol[t.Column] = append(byCol[t.Column], t)
	}

	for _, col := range model.Columns {
		tiles := byCol[col]
		fmt.Fprintf(&sb, "## %s\n\n", col.Name())
		if len(tiles) == 0 {
			sb.WriteString("_No tiles._\n\n")
			continue
		}
		sb.WriteString("| Tile | ID | Value |\n|------|----|------:|\n")
		for _, t := range tiles {
			fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", escapeCell(t.Label), t.ID, strconv.FormatFloat(t.Value, 'f', -1, 64))
		}
		sb.WriteString("\n")
	}

	if pairs := viewmodel.ConnectorPairs(vm.Connections); len(pairs) > 0 {
		sb.WriteString("## Connections\n\n```mermaid\n")
		sb.WriteString(connectionsMermaid(vm.Tiles, pairs))
		sb.WriteString("```\n\n")
	}

	if len(vm.Dropped) > 0 {
		sb.WriteString("## Dropped rows\n\n")
		for _, d := range vm.Dropped {
			fmt.Fprintf(&sb, "- row %d `%s`: %s\n", d.Row, d.Tile.ID, d.Reason)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteBoardMarkdown writes BoardMarkdown to w.
func WriteBoardMarkdown(w io.Writer, vm viewmodel.ViewModel, title string) error {
	_, err := io.WriteString(w, BoardMarkdown(vm, title))
	return err
}

func connectionsMermaid(tiles []model.Tile, pairs []viewmodel.Pair) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	labels := make(map[string]string, len(tiles))
	for _, t := range tiles {
		if _, ok := labels[t.ID]; !ok {
			labels[t.ID] = t.Label
		}
	}

	safe := make(map[string]string)
	used := make(map[string]bool)
	safeID := func(orig string) string {
		if s, ok := safe[orig]; ok {
			return s
		}
		base := sanitizeMermaidID(orig)
		s := base
		if used[s] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(orig))
			s = fmt.Sprintf("%s_%x", base, h.Sum32())
		}
		used[s] = true
		safe[orig] = s
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", s, sanitizeMermaidText(labels[orig]))
		return s
	}

	var edges []string
	for _, p := range pairs {
		from, to := safeID(p.From), safeID(p.To)
		edges = append(edges, fmt.Sprintf("    %s --> %s\n", from, to))
	}
	for _, e := range edges {
		sb.WriteString(e)
	}
	return sb.String()
}

// sanitizeMermaidID keeps letters, digits, hyphens and underscores.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "tile"
	}
	return sb.String()
}

var mermaidReplacer = strings.NewReplacer(
	"\"", "'",
	"[", "(",
	"]", ")",
	"<", "&lt;",
	">", "&gt;",
	"\n", " ",
)

func sanitizeMermaidText(text string) string {
	return mermaidReplacer.Replace(text)
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
