// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
  <w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Supplementary Table S1</w:t></w:r></w:p>
  <w:p><w:r><w:t xml:space="preserve">Primers for </w:t></w:r><w:r><w:t>GAPDH</w:t></w:r></w:p>
  <w:tbl>
    <w:tr>
      <w:tc><w:p><w:r><w:t>Gene</w:t></w:r></w:p></w:tc>
      <w:tc><w:p><w:r><w:t>Sequence</w:t></w:r></w:p></w:tc>
    </w:tr>
    <w:tr>
      <w:tc><w:p><w:r><w:t>ACTB</w:t></w:r></w:p><w:p><w:r><w:t>beta-actin</w:t></w:r></w:p></w:tc>
      <w:tc><w:p/></w:tc>
    </w:tr>
  </w:tbl>
  <w:p><w:r><w:t>Closing</w:t><w:tab/><w:t>note</w:t></w:r></w:p>
  <w:p/>
</w:body>
</w:document>`

func TestDocxExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.docx")
	writeDocx(t, path, documentXML)

	units, err := Docx{}.Extract(path)
	require.NoError(t, err)

	var texts []string
	for _, u := range units {
		assert.Equal(t, "tables.docx", u.Label)
		texts = append(texts, u.Text)
	}
	assert.Equal(t, []string{
		"Supplementary Table S1",
		"Primers for GAPDH",
		"Closing\tnote",
		"Gene",
		"Sequence",
		"ACTB\nbeta-actin",
	}, texts)
}

func TestDocxNestedParagraphs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "text box inside a paragraph",
			body: `<w:p><w:r><w:t xml:space="preserve">Before box </w:t></w:r>` +
				`<w:r><w:pict><v:shape><v:textbox><w:txbxContent>` +
				`<w:p><w:r><w:t>Boxed CD8</w:t></w:r></w:p>` +
				`</w:txbxContent></v:textbox></v:shape></w:pict></w:r>` +
				`<w:r><w:t>after box</w:t></w:r></w:p>`,
			want: []string{"Boxed CD8", "Before box after box"},
		},
		{
			name: "empty text box",
			body: `<w:p><w:r><w:t>Kept</w:t></w:r><w:r><w:pict><v:textbox><w:txbxContent><w:p/></w:txbxContent></v:textbox></w:pict></w:r></w:p>`,
			want: []string{"Kept"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "box.docx")
			writeDocx(t, path, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:v="urn:schemas-microsoft-com:vml"><w:body>`+
				tt.body+`</w:body></w:document>`)

			units, err := Docx{}.Extract(path)
			require.NoError(t, err)
			var texts []string
			for _, u := range units {
				texts = append(texts, u.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestDocxMissingBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Docx{}.Extract(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestDocxNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := Docx{}.Extract(path)
	assert.Error(t, err)
}

func writeDocx(t *testing.T, path, body string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}
