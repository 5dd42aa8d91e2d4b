package textfmt

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) *Container {
	t.Helper()
	root, err := ParseHTMLString(s)
	if err != nil {
		t.Fatalf("ParseHTMLString: %v", err)
	}
	return root
}

func TestParseHTML_Summary(t *testing.T) {
	root := mustParse(t, `<div><h1>Summary</h1><p>A  short
		note.</p><ul><li>alpha</li><li> beta </li></ul></div>`)
	want := "SUMMARY\n=======\n\nA short note.\n\n• alpha\n• beta\n\n"
	if got := Format(root); got != want {
		t.Errorf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestParseHTML_Variants(t *testing.T) {
	root := mustParse(t, `
<article>
  <h3>Setup</h3>
  <ol><li>Install</li><li>Run <code>make</code></li></ol>
  <blockquote><p>First line</p><p>Second <em>line</em></p></blockquote>
  <pre>
func main() {
	fmt.Println("hi")
}</pre>
  <hr>
  <table>
    <thead><tr><th>Name</th><th>Age</th></tr></thead>
    <tbody><tr><td>Ana</td><td>30</td></tr><tr><td></td><td></td></tr></tbody>
  </table>
</article>`)

	var kinds []string
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Container:
			for _, c := range v.Children {
				walk(c)
			}
		case *Heading:
			kinds = append(kinds, "heading")
		case *OrderedList:
			kinds = append(kinds, "ol")
			if v.Items[1] != "Run make" {
				t.Errorf("item = %q, want %q", v.Items[1], "Run make")
			}
		case *Blockquote:
			kinds = append(kinds, "quote")
			if v.Text != "First line\nSecond line" {
				t.Errorf("quote = %q", v.Text)
			}
		case *CodeBlock:
			kinds = append(kinds, "code")
			if !strings.HasPrefix(v.Text, "func main() {\n\tfmt.Println") {
				t.Errorf("code not verbatim: %q", v.Text)
			}
		case *HorizontalRule:
			kinds = append(kinds, "hr")
		case *Table:
			kinds = append(kinds, "table")
			if len(v.Rows) != 3 || !v.Rows[0].Header || v.Rows[1].Header {
				t.Errorf("rows = %+v", v.Rows)
			}
		default:
			kinds = append(kinds, "other")
		}
	}
	walk(root)
	if got := strings.Join(kinds, ","); got != "heading,ol,quote,code,hr,table" {
		t.Errorf("kinds = %s", got)
	}

	out := Format(root)
	for _, want := range []string{
		"### Setup\n\n",
		"1. Install\n2. Run make\n\n",
		"> First line\n> Second line\n\n",
		"```\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\n\n",
		"| Name       | Age        |\n|------------|------------|\n| Ana        | 30         |\n\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestParseHTML_DropsScripts(t *testing.T) {
	root := mustParse(t, `<div><script>alert("x")</script><style>p{}</style><p>visible</p></div>`)
	if got := Format(root); got != "visible\n\n" {
		t.Errorf("Format = %q, want only the paragraph", got)
	}
}

func TestParseHTML_InlineRuns(t *testing.T) {
	root := mustParse(t, `<div>Hello <b>bold</b> world<br>next line<p>para</p>tail</div>`)
	want := "Hello bold world\nnext line\npara\n\ntail\n"
	if got := Format(root); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestParseHTML_TableWithoutHead(t *testing.T) {
	root := mustParse(t, `<table><tr><th>K</th><th>V</th></tr><tr><td>a</td><td>1</td></tr></table>`)
	tbl, ok := root.Children[0].(*Table)
	if !ok {
		t.Fatalf("first child is %T, want *Table", root.Children[0])
	}
	if !tbl.Rows[0].Header {
		t.Error("row of th cells should be a header row")
	}
	if h, ok := tbl.HeaderRow(); !ok || h.Cells[0] != "K" {
		t.Errorf("HeaderRow = %+v, %v", h, ok)
	}
}

func TestParseHTML_EmptyBlocksDropped(t *testing.T) {
	root := mustParse(t, `<h2> </h2><p></p><ul><li> </li></ul><table></table>`)
	if got := Format(root); got != "" {
		t.Errorf("Format = %q, want empty output", got)
	}
}
