package exchange

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	headerRegex = regexp.MustCompile(`(?i)name`)
	quoteTrim   = regexp.MustCompile(`^\s*"?|"?\s*$`)
)

// ParseGuestCSV reads one guest name per line. A first line containing
// "name" (any case) is a header. Surrounding quotes are stripped and
// doubled quotes unescaped; blank names are skipped.
func ParseGuestCSV(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var names []string
	first := true
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if first {
			first = false
			if headerRegex.MatchString(line) {
				continue
			}
		}
		name := strings.ReplaceAll(quoteTrim.ReplaceAllString(line, ""), `""`, `"`)
		if name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// WriteGuestCSV writes a "name" header and every name quoted.
func WriteGuestCSV(w io.Writer, names []string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("name")
	for _, n := range names {
		bw.WriteString("\n\"")
		bw.WriteString(strings.ReplaceAll(n, `"`, `""`))
		bw.WriteString(`"`)
	}
	return bw.Flush()
}
