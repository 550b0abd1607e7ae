// This file is part of Emublocks.
//
// Emublocks is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emublocks is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emublocks.  If not, see <https://www.gnu.org/licenses/>.

package topology

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/jetsetilly/emublocks/curated"
)

// Patterns for errors found when parsing a topology description.
const (
	ParseError = "topology: line %d: %v"
	BadCommand = "unknown command (%s)"
	BadArgs    = "wrong number of arguments for %s"
	BadNumber  = "not a number (%s)"
)

func parseNumber(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, curated.Errorf(BadNumber, s)
	}
	return uint32(v), nil
}

// Parse a topology description and add the regions, mirrors and splits to
// the topology. The table is not updated until Apply() is called.
func (t *Topology) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++

		s := scanner.Text()
		if i := strings.Index(s, "#"); i >= 0 {
			s = s[:i]
		}
		f := strings.Fields(s)
		if len(f) == 0 {
			continue
		}

		if err := t.parseCommand(f); err != nil {
			return curated.Errorf(ParseError, line, err)
		}
	}

	return scanner.Err()
}

func (t *Topology) parseCommand(f []string) error {
	cmd := strings.ToLower(f[0])

	switch cmd {
	case "region":
		if len(f) != 4 && len(f) != 5 {
			return curated.Errorf(BadArgs, cmd)
		}
		origin, err := parseNumber(f[2])
		if err != nil {
			return err
		}
		size, err := parseNumber(f[3])
		if err != nil {
			return err
		}
		lazy := false
		if len(f) == 5 {
			if strings.ToLower(f[4]) != "lazy" {
				return curated.Errorf(BadArgs, cmd)
			}
			lazy = true
		}
		return t.AddRegion(f[1], origin, size, lazy)

	case "mirror":
		if len(f) != 3 {
			return curated.Errorf(BadArgs, cmd)
		}
		origin, err := parseNumber(f[2])
		if err != nil {
			return err
		}
		return t.AddMirror(f[1], origin)

	case "split":
		if len(f) < 3 {
			return curated.Errorf(BadArgs, cmd)
		}
		offsets := make([]uint32, 0, len(f)-2)
		for _, s := range f[2:] {
			o, err := parseNumber(s)
			if err != nil {
				return err
			}
			offsets = append(offsets, o)
		}
		return t.Split(f[1], offsets...)
	}

	return curated.Errorf(BadCommand, f[0])
}
