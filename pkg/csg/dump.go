package csg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes every toplevel of the scene to w, one per line, in
// registration order. The output is a valid scene description that
// parses back through pkg/lang.
func (s *Scene) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range s.toplevels {
		t.Dump(bw)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String returns the dump of the scene.
func (s *Scene) String() string {
	var sb strings.Builder
	s.Dump(&sb)
	return sb.String()
}

// ftoa formats a float with the fewest digits that round-trip
// exactly, avoiding exponent notation so the output stays lexable by
// the scene language.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *sphere) Dump(w io.Writer) {
	fmt.Fprintf(w, "(sphere %s)", ftoa(s.radius))
}

func (c *cube) Dump(w io.Writer) {
	fmt.Fprintf(w, "(cube %s)", ftoa(c.side))
}

func dumpBinary(w io.Writer, op string, left, right Object) {
	io.WriteString(w, "(")
	io.WriteString(w, op)
	io.WriteString(w, " ")
	left.Dump(w)
	io.WriteString(w, " ")
	right.Dump(w)
	io.WriteString(w, ")")
}

func (u *union) Dump(w io.Writer)        { dumpBinary(w, "unite", u.left, u.right) }
func (i *intersection) Dump(w io.Writer) { dumpBinary(w, "intersect", i.left, i.right) }
func (d *difference) Dump(w io.Writer)   { dumpBinary(w, "subtract", d.left, d.right) }

// Dump emits the stored world-to-object matrix, row major. The parser
// stores the sixteen entries verbatim, so transforms round-trip
// without re-inverting.
func (t *transform) Dump(w io.Writer) {
	io.WriteString(w, "(transform ")
	t.child.Dump(w)
	m := t.inv
	for _, e := range [16]float64{
		m[0], m[1], m[2], m[3],
		m[4], m[5], m[6], m[7],
		m[8], m[9], m[10], m[11],
		m[12], m[13], m[14], m[15],
	} {
		io.WriteString(w, " ")
		io.WriteString(w, ftoa(e))
	}
	io.WriteString(w, ")")
}

func (t *Toplevel) Dump(w io.Writer) {
	io.WriteString(w, "(toplevel ")
	t.child.Dump(w)
	fmt.Fprintf(w, " %q)", string(t.material))
}
