package xml

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tdewolff/test"
	"github.com/xaml-go/xaml"
)

func lines(ss ...string) string {
	return strings.Join(ss, "\n")
}

func parsePage(t *testing.T, src string, i int) *xaml.Page {
	t.Helper()
	doc, err := xaml.ParseString(src)
	test.Error(t, err)
	test.That(t, i < len(doc.Pages), "page", i, "of", len(doc.Pages))
	return doc.Pages[i]
}

func render(t *testing.T, src string, o Options) string {
	t.Helper()
	s, err := String(parsePage(t, src, 0), o)
	test.Error(t, err)
	return s
}

////////////////////////////////////////////////////////////////

func TestRender(t *testing.T) {
	var tests = []struct {
		name     string
		xaml     string
		expected string
	}{
		{"empty", "", ""},
		{"element", "~opentag", "<opentag/>"},
		{"text", "<howdy!>", "&lt;howdy!&gt;"},
		{"declaration", "!!! xml1.0", "<?xml version=\"1.0\"?>\n"},
		{"attribute", "~Test colors='blue:days_left<=days_warn and days_left>0;red:days_left<=0;'",
			`<Test colors="blue:days_left&lt;=days_warn and days_left&gt;0;red:days_left&lt;=0;"/>`},
		{"python filter", lines(
			"",
			"~opentag",
			"    ~data",
			"        :python",
			"            1 & 2",
			"            5 < 9",
			"",
			"    ~data",
		), lines(
			"<opentag>",
			"    <data>",
			`        <script type="text/python">`,
			"            1 & 2",
			"            5 < 9",
			"        </script>",
			"    </data>",
			"    <data/>",
			"</opentag>",
		)},
		{"comment", lines(
			"~opentag",
			"    ~data",
			"",
			"        // a random comment",
			"        // a scheduled comment",
		), lines(
			"<opentag>",
			"    <data>",
			"",
			"        <!--",
			"         |  a random comment",
			"         |  a scheduled comment",
			"        -->",
			"",
			"    </data>",
			"</opentag>",
		)},
		{"nesting blanks", lines(
			"~opentag",
			"    ~data",
			"",
			"        ~record view='ir.ui.view' #testing",
			"            @name blah='Testing'",
			"                ~form",
			"                    ~group",
			"",
			"    ~data noupdate='1'",
			"         ~record view='ir.ui.view'",
		), lines(
			"<opentag>",
			"    <data>",
			"",
			`        <record id="testing" view="ir.ui.view">`,
			`            <field name="name" blah="Testing">`,
			"                <form>",
			"                    <group/>",
			"                </form>",
			"            </field>",
			"        </record>",
			"",
			"    </data>",
			"",
			`    <data noupdate="1">`,
			`        <record view="ir.ui.view"/>`,
			"    </data>",
			"</opentag>",
		)},
		{"same level comments", lines(
			"~opentag",
			"    ~data",
			"",
			"        ~record view='ir.ui.view' #testing",
			"",
			"        // testing",
			"",
			"        ~record view='ir.actions.act_window' #more_testing",
			"            @name: More Testing",
			"            @view_mode: form,tree",
		), lines(
			"<opentag>",
			"    <data>",
			"",
			`        <record id="testing" view="ir.ui.view"/>`,
			"",
			"        <!--",
			"         |  testing",
			"        -->",
			"",
			`        <record id="more_testing" view="ir.actions.act_window">`,
			`            <field name="name">More Testing</field>`,
			`            <field name="view_mode">form,tree</field>`,
			"        </record>",
			"",
			"    </data>",
			"</opentag>",
		)},
		{"indented content", lines(
			"@script",
			"    lines = text.strip().split('\\n')",
			"    while lines:",
			"        segment, lines = lines[:12], lines[12:]",
			"        result[ip] = '%s\\n\\n%s' % (hash, ascii_art)",
			"",
			"@something_else",
		), lines(
			`<field name="script">`,
			"    lines = text.strip().split('\\n')",
			"    while lines:",
			"        segment, lines = lines[:12], lines[12:]",
			"        result[ip] = '%s\\n\\n%s' % (hash, ascii_art)",
			"</field>",
			"",
			`<field name="something_else"/>`,
		)},
		{"slash preserves whitespace", lines(
			"~sample",
			"    ~items: /",
			"    ~items:    / ",
			"    ~items: here's a line with blanks at the end  /",
		), lines(
			"<sample>",
			"    <items> </items>",
			"    <items>    </items>",
			"    <items>here's a line with blanks at the end  </items>",
			"</sample>",
		)},
		{"pipe continuation", lines(
			"~sample",
			"    ~items",
			`    | options="{'this': 'that'}"`,
			"    | readonly='1'",
			"    ~another_item: Hello!",
			"    @some_field",
			`    | options="{'this': 'that'}"`,
			"    @another_field",
		), lines(
			"<sample>",
			`    <items options="{'this': 'that'}" readonly="1"/>`,
			"    <another_item>Hello!</another_item>",
			`    <field name="some_field" options="{'this': 'that'}"/>`,
			`    <field name="another_field"/>`,
			"</sample>",
		)},
		{"attribute order", lines(
			`~button @button_sample_submit $Submit .oe_edit_hide type='object' attrs="{'invisible': [('state','!=','draft')]}"`,
		), `<button name="button_sample_submit" class="oe_edit_hide" attrs="{'invisible': [('state','!=','draft')]}" string="Submit" type="object"/>`},
		{"content between elements", lines(
			"~record #this_id",
			"    ~button #but1 $Click_Me!",
			"",
			"    or",
			"    ~button #but2 $Cancel",
		), lines(
			`<record id="this_id">`,
			`    <button id="but1" string="Click Me!"/>`,
			"",
			"    or",
			`    <button id="but2" string="Cancel"/>`,
			"</record>",
		)},
		{"nested", lines(
			"~openerp",
			"   ~record #fax_id view='ui.ir.view'",
			"      @name: Folders",
			"      @arch type='xml'",
			"         ~form $Folders version='7.0'",
			"            ~group",
			"               @id invisibility='1'",
			"               @path",
		), lines(
			"<openerp>",
			`    <record id="fax_id" view="ui.ir.view">`,
			`        <field name="name">Folders</field>`,
			`        <field name="arch" type="xml">`,
			`            <form string="Folders" version="7.0">`,
			"                <group>",
			`                    <field name="id" invisibility="1"/>`,
			`                    <field name="path"/>`,
			"                </group>",
			"            </form>",
			"        </field>",
			"    </record>",
			"</openerp>",
		)},
		{"tag in content", lines(
			"~div class='oe_partner oe_show_more'",
			"    And",
			"    ~t t-raw='number'",
			"    @target t-raw='number'",
			"    more.",
		), lines(
			`<div class="oe_partner oe_show_more">`,
			"    And",
			`    <t t-raw="number"/>`,
			`    <field name="target" t-raw="number"/>`,
			"    more.",
			"</div>",
		)},
		{"content and tag", lines(
			"~div",
			"    ~span : Followers of selected items and",
			"    ~span : Followers of",
			`        @record_name .oe_inline attrs="{'invisible':[('model', '=', False)]}" readonly='1'`,
			"        and",
			"    @partner_ids",
			"@subject",
		), lines(
			"<div>",
			"    <span>Followers of selected items and</span>",
			"    <span>Followers of",
			`        <field name="record_name" class="oe_inline" attrs="{'invisible':[('model', '=', False)]}" readonly="1"/>`,
			"        and",
			"    </span>",
			`    <field name="partner_ids"/>`,
			"</div>",
			`<field name="subject"/>`,
		)},
		{"void tags in xml", lines(
			"~html",
			"    ~area",
			"        ~title: my cool app!",
			"    ~br",
		), lines(
			"<html>",
			"    <area>",
			"        <title>my cool app!</title>",
			"    </area>",
			"    <br/>",
			"</html>",
		)},
		{"raw script", lines(
			"~script",
			"    if ( 5 < 7 &&",
			"",
			"    .3 > .5) {",
			"             a = false & true;",
			"    }",
		), lines(
			"<script>",
			"    if ( 5 < 7 &&",
			"",
			"    .3 > .5) {",
			"             a = false & true;",
			"    }",
			"</script>",
		)},
		{"cdata", lines(
			"@script",
			"    :cdata",
			"        for block in Blocks(text, 12):",
			"            ip = ip.split(',')[-1]",
			"    :cdata-python",
			"        x < y",
		), lines(
			`<field name="script">`,
			"    <![CDATA[",
			"        for block in Blocks(text, 12):",
			"            ip = ip.split(',')[-1]",
			"    ]]>",
			"    <![CDATA[",
			"        x < y",
			"    ]]>",
			"</field>",
		)},
		{"inline elements", lines(
			"~table",
			"    ~tr",
			"        ~td : ~field @some_field",
			"        ~td : ~xsl:text: Department",
			"        ~td : ~xsl:value-of select='dept'",
		), lines(
			"<table>",
			"    <tr>",
			"        <td>",
			`            <field name="some_field"/>`,
			"        </td>",
			"        <td>",
			"            <xsl:text>Department</xsl:text>",
			"        </td>",
			"        <td>",
			`            <xsl:value-of select="dept"/>`,
			"        </td>",
			"    </tr>",
			"</table>",
		)},
		{"interpolation", lines(
			"-name = 'Bob'",
			"~p: Hello #{name}!",
			"~a",
			"    Hi #{name}, <b>",
		), lines(
			"<p>Hello Bob!</p>",
			"<a>",
			"    Hi Bob, &lt;b&gt;",
			"</a>",
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.String(t, render(t, tt.xaml, Options{}), tt.expected)
		})
	}
}

func TestRenderCode(t *testing.T) {
	var tests = []struct {
		name     string
		xaml     string
		vars     map[string]interface{}
		expected string
	}{
		{"assignments", lines(
			"-view = 'ir.ui.view'",
			"-folder_model = 'fnx.fs.folder'",
			"~openerp",
			"    ~menuitem @FnxFS #fnx_file_system groups='consumer'",
			"    ~record #fnx_fs_folders_tree model=view",
			"        @model: =folder_model",
			"        @res_model: = folder_model",
		), nil, lines(
			"<openerp>",
			`    <menuitem name="FnxFS" id="fnx_file_system" groups="consumer"/>`,
			`    <record id="fnx_fs_folders_tree" model="ir.ui.view">`,
			`        <field name="model">fnx.fs.folder</field>`,
			`        <field name="res_model">fnx.fs.folder</field>`,
			"    </record>",
			"</openerp>",
		)},
		{"for", lines(
			"~the_page",
			"    ~an_ordered_list",
			"        -for item in args.order:",
			"            ~number order=item",
		), map[string]interface{}{"order": []string{"first", "second", "third"}}, lines(
			"<the_page>",
			"    <an_ordered_list>",
			`        <number order="first"/>`,
			`        <number order="second"/>`,
			`        <number order="third"/>`,
			"    </an_ordered_list>",
			"</the_page>",
		)},
		{"zip and format", lines(
			"~ul",
			"    -for wfile, dfile in zip(args.web_files, args.display_files):",
			"        -path = '%s?path=%s&file=%s' % (args.download, args.path, wfile)",
			"        ~li",
			"            ~a href=path target='_blank': =dfile",
		), map[string]interface{}{
			"download":      "dl",
			"path":          "leaf",
			"web_files":     []string{"ths", "tht"},
			"display_files": []string{"this", "that"},
		}, lines(
			"<ul>",
			"    <li>",
			`        <a href="dl?path=leaf&amp;file=ths" target="_blank">this</a>`,
			"    </li>",
			"    <li>",
			`        <a href="dl?path=leaf&amp;file=tht" target="_blank">that</a>`,
			"    </li>",
			"</ul>",
		)},
		{"if elif", lines(
			"~div",
			"    -if args.permissions == 'write/unlink':",
			"        ~a: Add/Delete files...",
			"    -elif args.permissions == 'write':",
			"        ~a: Add files...",
			"    -else:",
			"        ~a: Browse files...",
			"    ~br",
		), map[string]interface{}{"permissions": "write"}, lines(
			"<div>",
			"    <a>Add files...</a>",
			"    <br/>",
			"</div>",
		)},
		{"else", lines(
			"-if not args.items:",
			"    ~empty",
			"-else:",
			"    ~full",
		), map[string]interface{}{"items": []int{}}, "<empty/>"},
		{"if without match", lines(
			"-if args.count != 0 and args.name:",
			"    ~a",
			"~b",
		), map[string]interface{}{"count": 1, "name": ""}, "<b/>"},
		{"free names", "~a title=title: =subtitle", map[string]interface{}{"title": "T", "subtitle": 2}, `<a title="T">2</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.String(t, render(t, tt.xaml, Options{Vars: tt.vars}), tt.expected)
		})
	}
}

func TestRenderCodeErrors(t *testing.T) {
	var tests = []struct {
		xaml string
		err  error
	}{
		{"-x = foo(1)", ErrUnsupported},
		{"-import os", ErrUnsupported},
		{"-elif x:\n    ~a", ErrUnsupported},
		{"-x = 'a'\n    ~a", ErrUnsupported},
		{"-for x in 5:\n    ~a", ErrUnsupported},
		{"-for a, b in args.pairs:\n    ~a", ErrUnsupported},
		{"~a href=missing", ErrUndefined},
		{"~a: =args.missing", ErrUndefined},
		{"~a: #{'%s %s' % ('x')}", ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.xaml, func(t *testing.T) {
			_, err := String(parsePage(t, tt.xaml, 0), Options{Vars: map[string]interface{}{"pairs": []string{"a"}}})
			test.That(t, errors.Is(err, tt.err), "expected", tt.err, "got", err)
		})
	}
}

func TestRenderAttrOrder(t *testing.T) {
	page := parsePage(t, "~img src='logo.svg' alt='logo' #main .a", 0)
	s, err := String(page, Options{})
	test.Error(t, err)
	test.String(t, s, `<img id="main" class="a" alt="logo" src="logo.svg"/>`)

	s, err = String(page, Options{SourceOrder: true})
	test.Error(t, err)
	test.String(t, s, `<img src="logo.svg" alt="logo" id="main" class="a"/>`)
}

func TestRenderIndent(t *testing.T) {
	test.String(t, render(t, "~a\n    ~b\n        ~c", Options{Indent: "\t"}), "<a>\n\t<b>\n\t\t<c/>\n\t</b>\n</a>")
}

func TestRenderPages(t *testing.T) {
	src := lines(
		"!!!xml1.0",
		"~items",
		"    ~item @id type='fields'",
		"",
		"!!!xml1.0",
		"~xsl:stylesheet version='1.0'",
		"",
		"    ~xsl:template match='/'",
		"        ~xsl:apply-templates select='items'",
		"!!!xsl1.0",
		"~xsl",
		"    ~xsl:template match='/'",
	)
	s, err := String(parsePage(t, src, 0), Options{})
	test.Error(t, err)
	test.String(t, s, lines(
		`<?xml version="1.0"?>`,
		"<items>",
		`    <item name="id" type="fields"/>`,
		"</items>",
	))

	buf := &bytes.Buffer{}
	test.Error(t, Render(buf, parsePage(t, src, 1), Options{Encoding: "utf-8"}))
	test.String(t, buf.String(), lines(
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<xsl:stylesheet version="1.0">`,
		"",
		`    <xsl:template match="/">`,
		`        <xsl:apply-templates select="items"/>`,
		"    </xsl:template>",
		"",
		"</xsl:stylesheet>",
	))

	page := parsePage(t, src, 2)
	s, err = String(page, Options{})
	test.Error(t, err)
	test.String(t, s, lines(
		`<?xml version="1.0"?>`,
		`<xsl:stylesheet version="1.0" xmlns:fo="http://www.w3.org/1999/XSL/Format" xmlns:xsl="http://www.w3.org/1999/XSL/Transform">`,
		`    <xsl:template match="/"/>`,
		"</xsl:stylesheet>",
	))
	test.String(t, page.Root.Children[0].(*xaml.NodeElement).Tag, "xsl", "page must not be modified")
}

func TestRenderEncoding(t *testing.T) {
	page := parsePage(t, "!!! xml\n~a: café €", 0)
	buf := &bytes.Buffer{}
	test.Error(t, Render(buf, page, Options{Encoding: "iso-8859-2"}))
	test.Bytes(t, buf.Bytes(), []byte("<?xml version=\"1.0\" encoding=\"iso-8859-2\"?>\n<a>caf\xe9 &#8364;</a>"))

	test.That(t, Render(buf, page, Options{Encoding: "klingon"}) != nil, "unknown encoding")
}

func ExampleString() {
	doc, _ := xaml.ParseString("!!! xml1.0\n~note #n1\n    ~to: Tove\n    ~body: Don't forget me this weekend!")
	s, _ := String(doc.Pages[0], Options{})
	fmt.Println(s)
	// Output:
	// <?xml version="1.0"?>
	// <note id="n1">
	//     <to>Tove</to>
	//     <body>Don't forget me this weekend!</body>
	// </note>
}
