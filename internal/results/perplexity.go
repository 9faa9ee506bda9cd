package results

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

// LastLine returns the last non-empty line of the file at path.
func LastLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var last string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			last = line
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return last, nil
}

// ParsePerplexity extracts the perplexity from a prediction summary line:
// the second whitespace-separated token, as a float.
func ParsePerplexity(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: want at least 2 tokens, got %q", common.ErrMalformedLog, line)
	}
	ppl, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrMalformedLog, err)
	}
	return ppl, nil
}

// ReadPerplexity reads the perplexity reported at the end of a prediction log.
func ReadPerplexity(path string) (float64, error) {
	line, err := LastLine(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrMalformedLog, err)
	}
	return ParsePerplexity(line)
}
