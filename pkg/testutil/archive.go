package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
)

// ModArchive returns a zip archive laid out like a portal download: a
// Name_Version folder holding info.json and any extra files.
func ModArchive(name, version, factorioVersion string, extra map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	root := fmt.Sprintf("%s_%s/", name, version)

	info, _ := json.Marshal(map[string]string{
		"name":             name,
		"version":          version,
		"title":            name + " title",
		"author":           "tester",
		"factorio_version": factorioVersion,
	})
	write := func(path string, data []byte) {
		f, err := w.Create(root + path)
		if err != nil {
			panic(err)
		}
		if _, err := f.Write(data); err != nil {
			panic(err)
		}
	}
	write("info.json", info)
	for path, content := range extra {
		write(path, []byte(content))
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
