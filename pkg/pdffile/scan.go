package pdffile

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	objHeaderRE = regexp.MustCompile(`(?m)^[ \t]*(\d+)\s+(\d+)\s+obj\b`)

	typeCatalogRE = regexp.MustCompile(`/Type\s*/Catalog\b`)
	typePagesRE   = regexp.MustCompile(`/Type\s*/Pages\b`)
	typePageRE    = regexp.MustCompile(`/Type\s*/Page\b`)

	pagesRefRE  = regexp.MustCompile(`/Pages\s+(\d+)\s+(\d+)\s+R\b`)
	parentRefRE = regexp.MustCompile(`/Parent\s+(\d+)\s+(\d+)\s+R\b`)
	annotsRefRE = regexp.MustCompile(`/Annots\s+(\d+)\s+(\d+)\s+R\b`)
	indirectRE  = regexp.MustCompile(`(\d+)\s+(\d+)\s+R\b`)

	mediaBoxRE = regexp.MustCompile(`/MediaBox\s*\[\s*([\d.+-]+)\s+([\d.+-]+)\s+([\d.+-]+)\s+([\d.+-]+)\s*\]`)

	rootRefRE   = regexp.MustCompile(`/Root\s+(\d+)\s+(\d+)\s+R\b`)
	sizeRE      = regexp.MustCompile(`/Size\s+(\d+)`)
	startxrefRE = regexp.MustCompile(`startxref\s+(\d+)`)
)

// objEntry is the latest definition of one indirect object.
type objEntry struct {
	gen   int
	start int    // offset of the body, just past the "obj" keyword
	dict  string // raw body including << >>, empty when the object is not a dictionary
}

// scanObjects locates every "N G obj" header in the data and extracts the
// dictionary that follows it. Incremental updates define an object more than
// once; the last definition wins, matching xref chain resolution for
// well-formed files.
func (f *File) scanObjects() {
	f.objects = make(map[int]objEntry)
	for _, m := range objHeaderRE.FindAllSubmatchIndex(f.data, -1) {
		num, err := strconv.Atoi(string(f.data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(string(f.data[m[4]:m[5]]))
		if err != nil {
			continue
		}
		if _, seen := f.objects[num]; !seen {
			f.order = append(f.order, num)
		}
		f.objects[num] = objEntry{gen: gen, start: m[1], dict: dictAt(f.data, m[1])}
		if num > f.maxObj {
			f.maxObj = num
		}
	}
}

// scanTrailer pulls the catalog reference and the latest xref offset out of
// the trailing structures. Last match wins so the newest revision's trailer
// is the one honored.
func (f *File) scanTrailer() {
	if m := lastSubmatch(rootRefRE, f.data); m != nil {
		f.rootNum, _ = strconv.Atoi(m[1])
		f.rootGen, _ = strconv.Atoi(m[2])
	}
	if m := lastSubmatch(startxrefRE, f.data); m != nil {
		f.prevXref, _ = strconv.Atoi(m[1])
	}
	if m := lastSubmatch(sizeRE, f.data); m != nil {
		if size, _ := strconv.Atoi(m[1]); size-1 > f.maxObj {
			f.maxObj = size - 1
		}
	}
}

// buildPages resolves the ordered page list. The catalog's page tree gives
// the authoritative order; when the tree cannot be walked the pages are taken
// in file order instead.
func (f *File) buildPages() {
	ordered := f.pagesFromTree()
	if len(ordered) == 0 {
		ordered = f.pagesFromScan()
	}
	for _, num := range ordered {
		e := f.objects[num]
		f.pages = append(f.pages, &page{
			objNum: num,
			gen:    e.gen,
			dict:   e.dict,
			media:  f.resolveMediaBox(num),
		})
	}
}

func (f *File) pagesFromTree() []int {
	catNum := f.rootNum
	if e, ok := f.objects[catNum]; !ok || !typeCatalogRE.MatchString(e.dict) {
		catNum = 0
		for _, num := range f.order {
			if typeCatalogRE.MatchString(f.objects[num].dict) {
				catNum = num
				break
			}
		}
	}
	cat, ok := f.objects[catNum]
	if !ok {
		return nil
	}
	m := pagesRefRE.FindStringSubmatch(cat.dict)
	if m == nil {
		return nil
	}
	rootPages, _ := strconv.Atoi(m[1])

	var out []int
	visited := make(map[int]bool)
	var walk func(num int)
	walk = func(num int) {
		if visited[num] {
			return
		}
		visited[num] = true
		e, ok := f.objects[num]
		if !ok {
			return
		}
		switch {
		case typePagesRE.MatchString(e.dict):
			kids := arrayAfterKey(e.dict, "/Kids")
			for _, ref := range indirectRE.FindAllStringSubmatch(kids, -1) {
				kid, _ := strconv.Atoi(ref[1])
				walk(kid)
			}
		case typePageRE.MatchString(e.dict):
			out = append(out, num)
		}
	}
	walk(rootPages)
	return out
}

func (f *File) pagesFromScan() []int {
	var out []int
	for _, num := range f.order {
		e := f.objects[num]
		if typePageRE.MatchString(e.dict) && !typePagesRE.MatchString(e.dict) {
			out = append(out, num)
		}
	}
	return out
}

// resolveMediaBox finds the page's MediaBox, following /Parent inheritance.
// Pages without any MediaBox in their ancestry get US Letter.
func (f *File) resolveMediaBox(num int) [4]float64 {
	cur := num
	for depth := 0; depth < 32; depth++ {
		e, ok := f.objects[cur]
		if !ok {
			break
		}
		if m := mediaBoxRE.FindStringSubmatch(e.dict); m != nil {
			var box [4]float64
			for i := 0; i < 4; i++ {
				box[i], _ = strconv.ParseFloat(m[i+1], 64)
			}
			if box[0] > box[2] {
				box[0], box[2] = box[2], box[0]
			}
			if box[1] > box[3] {
				box[1], box[3] = box[3], box[1]
			}
			return box
		}
		pm := parentRefRE.FindStringSubmatch(e.dict)
		if pm == nil {
			break
		}
		cur, _ = strconv.Atoi(pm[1])
	}
	return [4]float64{0, 0, 612, 792}
}

// dictAt extracts the balanced << >> dictionary starting at or after i,
// skipping over literal and hex strings so delimiters inside them do not
// confuse the nesting count.
func dictAt(data []byte, i int) string {
	for i < len(data) && isPDFSpace(data[i]) {
		i++
	}
	if i+1 >= len(data) || data[i] != '<' || data[i+1] != '<' {
		return ""
	}
	start := i
	depth := 0
	for i < len(data) {
		switch {
		case data[i] == '<' && i+1 < len(data) && data[i+1] == '<':
			depth++
			i += 2
		case data[i] == '>' && i+1 < len(data) && data[i+1] == '>':
			depth--
			i += 2
			if depth == 0 {
				return string(data[start:i])
			}
		case data[i] == '(':
			i = skipLiteralString(data, i)
		case data[i] == '<':
			i = skipHexString(data, i)
		case data[i] == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		default:
			i++
		}
	}
	return ""
}

// skipLiteralString advances past a ( ) string, honoring backslash escapes
// and balanced inner parentheses.
func skipLiteralString(data []byte, i int) int {
	depth := 0
	for ; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

// arrayAt extracts the balanced [ ] body starting at or after i, for objects
// whose top-level value is an array rather than a dictionary.
func arrayAt(data []byte, i int) string {
	for i < len(data) && isPDFSpace(data[i]) {
		i++
	}
	if i >= len(data) || data[i] != '[' {
		return ""
	}
	start := i
	depth := 0
	for ; i < len(data); i++ {
		switch data[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return string(data[start : i+1])
			}
		case '(':
			i = skipLiteralString(data, i) - 1
		case '<':
			i = skipHexString(data, i) - 1
		}
	}
	return ""
}

func skipHexString(data []byte, i int) int {
	for ; i < len(data); i++ {
		if data[i] == '>' {
			return i + 1
		}
	}
	return i
}

// arrayAfterKey returns the balanced [ ] array that follows key in dict,
// including the brackets, or "" when absent.
func arrayAfterKey(dict, key string) string {
	pos := indexToken(dict, key)
	if pos < 0 {
		return ""
	}
	data := []byte(dict)
	i := pos + len(key)
	for i < len(data) && isPDFSpace(data[i]) {
		i++
	}
	if i >= len(data) || data[i] != '[' {
		return ""
	}
	start := i
	depth := 0
	for ; i < len(data); i++ {
		switch data[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return dict[start : i+1]
			}
		case '(':
			i = skipLiteralString(data, i) - 1
		}
	}
	return ""
}

// indexToken finds a name token like /Kids that is not a prefix of a longer
// name (so /Kids does not match /KidsExtra).
func indexToken(s, key string) int {
	from := 0
	for {
		i := strings.Index(s[from:], key)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(key)
		if end >= len(s) || !isRegular(s[end]) {
			return i
		}
		from = end
	}
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// isRegular reports whether c is a regular character, i.e. neither
// whitespace nor a delimiter, per the PDF tokenizer rules.
func isRegular(c byte) bool {
	if isPDFSpace(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

func lastSubmatch(re *regexp.Regexp, data []byte) []string {
	all := re.FindAllSubmatch(data, -1)
	if len(all) == 0 {
		return nil
	}
	last := all[len(all)-1]
	out := make([]string, len(last))
	for i, b := range last {
		out[i] = string(b)
	}
	return out
}
