package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	blockHeaderPattern = regexp.MustCompile(`(?m)^<!-- segment: (\d+)/(\d+) -->\n`)
	// only a bracketed time range counts as a heading; a body may open with
	// its own markdown heading
	headingPattern = regexp.MustCompile(`^### (\[[^\n]*\])\n`)
)

// Block is the result of one segment as stored in an artifact.
type Block struct {
	Index   int
	Total   int
	Heading string // bracketed time range; empty for untimed segments
	Body    string
}

func (b Block) render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<!-- segment: %d/%d -->\n", b.Index, b.Total)
	if b.Heading != "" {
		fmt.Fprintf(&sb, "### %s\n\n", b.Heading)
	}
	sb.WriteString(strings.TrimSpace(b.Body))
	sb.WriteString("\n\n")
	return sb.String()
}

// WriteSegmentResult drops any trailing marker and appends the block.
func WriteSegmentResult(path string, b Block) error {
	content, err := readContent(path)
	if err != nil {
		return err
	}
	body, _ := splitMarker(content)
	return writeAtomic(path, body+b.render())
}

// ReadBlocks returns every block stored in the artifact, in file order.
func ReadBlocks(path string) ([]Block, error) {
	content, err := readContent(path)
	if err != nil {
		return nil, err
	}
	body, _ := splitMarker(content)
	return parseBlocks(body), nil
}

func parseBlocks(content string) []Block {
	locs := blockHeaderPattern.FindAllStringSubmatchIndex(content, -1)
	blocks := make([]Block, 0, len(locs))
	for i, loc := range locs {
		index, _ := strconv.Atoi(content[loc[2]:loc[3]])
		total, _ := strconv.Atoi(content[loc[4]:loc[5]])

		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := content[loc[1]:end]

		var heading string
		if m := headingPattern.FindStringSubmatch(text); m != nil {
			heading = m[1]
			text = text[len(m[0]):]
		}

		blocks = append(blocks, Block{
			Index:   index,
			Total:   total,
			Heading: heading,
			Body:    strings.TrimSpace(text),
		})
	}
	return blocks
}

// Truncate removes the marker and every block whose index is >= index, so
// that re-running segment index replaces its output instead of repeating it.
func Truncate(path string, index int) error {
	content, err := readContent(path)
	if err != nil {
		return err
	}
	body, _ := splitMarker(content)

	cut := len(body)
	for _, loc := range blockHeaderPattern.FindAllStringSubmatchIndex(body, -1) {
		n, _ := strconv.Atoi(body[loc[2]:loc[3]])
		if n >= index {
			cut = loc[0]
			break
		}
	}
	if cut == len(body) && body == content {
		return nil
	}
	return writeAtomic(path, body[:cut])
}
