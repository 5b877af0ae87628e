package pdffile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// newObject is one object queued for the appended revision.
type newObject struct {
	num, gen int
	body     string
}

// SaveIncremental writes the original bytes followed by an appended revision
// carrying the staged annotations: the new annotation objects, rewritten page
// dictionaries (or their /Annots arrays), a cross-reference section, and a
// trailer whose /Prev points at the previous revision's xref.
//
// With nothing staged the original bytes are written unchanged.
func (f *File) SaveIncremental(w io.Writer) error {
	if len(f.staged) == 0 {
		_, err := w.Write(f.data)
		return err
	}

	next := f.maxObj + 1
	var objs []newObject
	refsByPage := make(map[int][]string)

	for _, ft := range f.staged {
		p := f.pages[ft.page]
		pageRef := fmt.Sprintf("%d %d R", p.objNum, p.gen)
		objs = append(objs, newObject{num: next, body: ft.dictBody(pageRef)})
		refsByPage[ft.page] = append(refsByPage[ft.page], fmt.Sprintf("%d 0 R", next))
		next++
	}

	touched := make([]int, 0, len(refsByPage))
	for pageIdx := range refsByPage {
		touched = append(touched, pageIdx)
	}
	sort.Ints(touched)
	for _, pageIdx := range touched {
		pageObjs, err := f.annotatedPage(f.pages[pageIdx], refsByPage[pageIdx])
		if err != nil {
			return fmt.Errorf("page %d: %w", pageIdx+1, err)
		}
		objs = append(objs, pageObjs...)
	}

	var buf bytes.Buffer
	buf.Write(f.data)
	if f.data[len(f.data)-1] != '\n' && f.data[len(f.data)-1] != '\r' {
		buf.WriteByte('\n')
	}

	offsets := make(map[int]int)
	gens := make(map[int]int)
	for _, o := range objs {
		offsets[o.num] = buf.Len()
		gens[o.num] = o.gen
		fmt.Fprintf(&buf, "%d %d obj\n%s\nendobj\n", o.num, o.gen, o.body)
	}

	xrefOff := buf.Len()
	writeXref(&buf, offsets, gens)
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d %d R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n",
		next, f.rootNum, f.rootGen, f.prevXref, xrefOff)

	_, err := w.Write(buf.Bytes())
	return err
}

// SaveIncrementalFile writes the incremental update to path.
func (f *File) SaveIncrementalFile(path string) error {
	var buf bytes.Buffer
	if err := f.SaveIncremental(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// annotatedPage returns the objects that attach refs to the page: either a
// rewritten page dictionary, or just an updated /Annots array object when the
// page keeps its array indirect.
func (f *File) annotatedPage(p *page, refs []string) ([]newObject, error) {
	if p.dict == "" {
		return nil, fmt.Errorf("page object %d has no dictionary", p.objNum)
	}
	joined := strings.Join(refs, " ")

	// Indirect /Annots: update only the array object, the page dictionary
	// itself is untouched.
	if m := annotsRefRE.FindStringSubmatch(p.dict); m != nil {
		arrNum, _ := strconv.Atoi(m[1])
		arrGen, _ := strconv.Atoi(m[2])
		arr, ok := f.objects[arrNum]
		if !ok {
			return nil, fmt.Errorf("annots array object %d not found", arrNum)
		}
		existing := arrayAt(f.data, arr.start)
		if existing == "" {
			return nil, fmt.Errorf("annots object %d is not an array", arrNum)
		}
		body := appendToArray(existing, joined)
		return []newObject{{num: arrNum, gen: arrGen, body: body}}, nil
	}

	// Inline /Annots: extend the array inside the page dictionary.
	if existing := arrayAfterKey(p.dict, "/Annots"); existing != "" {
		updated := strings.Replace(p.dict, existing, appendToArray(existing, joined), 1)
		return []newObject{{num: p.objNum, gen: p.gen, body: updated}}, nil
	}

	// No /Annots yet: add the key before the closing >>.
	end := strings.LastIndex(p.dict, ">>")
	if end < 0 {
		return nil, fmt.Errorf("page object %d has a malformed dictionary", p.objNum)
	}
	updated := p.dict[:end] + fmt.Sprintf("/Annots [%s] ", joined) + p.dict[end:]
	return []newObject{{num: p.objNum, gen: p.gen, body: updated}}, nil
}

// appendToArray inserts items before the closing bracket of a [ ] array.
func appendToArray(array, items string) string {
	end := strings.LastIndex(array, "]")
	if end < 0 {
		return "[" + items + "]"
	}
	return array[:end] + " " + items + array[end:]
}

// writeXref emits a classic cross-reference section with one subsection per
// run of consecutive object numbers.
func writeXref(buf *bytes.Buffer, offsets, gens map[int]int) {
	nums := make([]int, 0, len(offsets))
	for n := range offsets {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	buf.WriteString("xref\n")
	for i := 0; i < len(nums); {
		j := i + 1
		for j < len(nums) && nums[j] == nums[j-1]+1 {
			j++
		}
		fmt.Fprintf(buf, "%d %d\n", nums[i], j-i)
		for _, n := range nums[i:j] {
			fmt.Fprintf(buf, "%010d %05d n \n", offsets[n], gens[n])
		}
		i = j
	}
}
