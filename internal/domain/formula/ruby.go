package formula

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode"
)

// rubyTemplate renders a Homebrew formula. Platform blocks use the on_macos,
// on_linux, on_intel and on_arm DSL so one file covers every artifact.
//
//nolint:gochecknoglobals // Parsed once.
var rubyTemplate = template.Must(template.New("formula").Funcs(template.FuncMap{
	"str":    rubyString,
	"urlstr": rubyURL,
}).Parse(`class {{ .Class }} < Formula
  desc {{ str .Desc }}
  homepage {{ str .Homepage }}
  version {{ str .Version }}
{{- range .Groups }}

  {{ .Block }} do
{{- range .Arches }}
{{- if .Block }}
    {{ .Block }} do
      url {{ urlstr .URL }}
      sha256 {{ str .SHA256 }}
    end
{{- else }}
    url {{ urlstr .URL }}
    sha256 {{ str .SHA256 }}
{{- end }}
{{- end }}
  end
{{- end }}

  def install
{{- range .Binaries }}
    bin.install {{ str . }}
{{- end }}
  end
end
`))

type rubyView struct {
	Class    string
	Desc     string
	Homepage string
	Version  string
	Groups   []rubyGroup
	Binaries []string
}

type rubyGroup struct {
	Block  string
	Arches []rubyArch
}

// rubyArch is one download. An empty Block puts it directly in the OS block.
type rubyArch struct {
	Block  string
	URL    string
	SHA256 string
}

// RenderRuby writes the formula as a Homebrew Ruby formula.
func (f *Formula) RenderRuby(w io.Writer) error {
	view := rubyView{
		Class:    ClassName(f.Name),
		Desc:     f.Desc,
		Homepage: f.Homepage,
		Version:  f.Version,
		Binaries: f.Install.Binaries,
	}

	for _, osBlock := range []struct{ os, block string }{
		{OSDarwin, "on_macos"},
		{OSLinux, "on_linux"},
	} {
		group := rubyGroup{Block: osBlock.block}

		for _, archBlock := range []struct{ arch, block string }{
			{ArchAMD64, "on_intel"},
			{ArchARM64, "on_arm"},
		} {
			a := f.artifactFor(Platform{OS: osBlock.os, Arch: archBlock.arch})
			if a == nil {
				continue
			}

			group.Arches = append(group.Arches, rubyArch{
				Block:  archBlock.block,
				URL:    a.URL,
				SHA256: a.SHA256,
			})
		}

		// A lone Intel macOS build also serves Apple silicon, as Resolve does.
		if osBlock.os == OSDarwin && len(group.Arches) == 1 && group.Arches[0].Block == "on_intel" {
			group.Arches[0].Block = ""
		}

		if len(group.Arches) > 0 {
			view.Groups = append(view.Groups, group)
		}
	}

	if err := rubyTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render formula: %w", err)
	}

	return nil
}

// ClassName derives the Homebrew class name from a package name:
// "s3edit" becomes "S3edit", "s3-edit" becomes "S3Edit".
func ClassName(name string) string {
	var b strings.Builder

	upper := true

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}

		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}

		b.WriteRune(r)
	}

	return b.String()
}

// rubyURL quotes a URL template. Only the version placeholder becomes
// Ruby interpolation; any other #{ in the URL stays literal.
func rubyURL(s string) string {
	return strings.ReplaceAll(rubyString(s), VersionPlaceholder, "#{version}")
}

// rubyString quotes s as a double-quoted Ruby literal with interpolation escaped.
func rubyString(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '#' && i+1 < len(s) && s[i+1] == '{':
			b.WriteString(`\#`)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('"')

	return b.String()
}
