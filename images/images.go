/*
Package images finds legend-sheet images that carry kiro metadata.

The kiro file for an image lives next to it with the extension replaced:
legends.png → legends.kiro.json.
*/
package images

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/krisalay/kiro/metadata"
)

// Suffix replaces an image's extension to name its kiro file.
const Suffix = ".kiro.json"

// Asset is an image as the host knows it.
type Asset struct {
	Name     string
	NameFull string
	FilePath string
}

// Enumerator lists every image the host knows about.
type Enumerator interface {
	Images() ([]Asset, error)
}

// JSONPath returns where the kiro file for imagePath would be.
func JSONPath(imagePath string) string {
	dir, base := filepath.Split(imagePath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(dir, base+Suffix)
}

// Meta describes one asset. JSONPath is set only when the kiro file exists.
func Meta(a Asset) metadata.ImageMeta {
	im := metadata.ImageMeta{Name: a.Name, NameFull: a.NameFull}
	if a.FilePath == "" {
		return im
	}

	path, err := filepath.Abs(a.FilePath)
	if err != nil {
		path = a.FilePath
	}
	im.ImagePath = path

	if jp := JSONPath(path); exists(jp) {
		im.JSONPath = jp
	}
	return im
}

// Scan returns the assets that have both an image path and a kiro file.
func Scan(e Enumerator) ([]metadata.ImageMeta, error) {
	assets, err := e.Images()
	if err != nil {
		return nil, err
	}

	var out []metadata.ImageMeta
	for _, a := range assets {
		if im := Meta(a); im.HasMetadata() {
			out = append(out, im)
		}
	}
	return out, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Static is an Enumerator over a fixed list.
type Static []Asset

func (s Static) Images() ([]Asset, error) {
	return s, nil
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tga": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true, ".exr": true,
}

// Dir enumerates the image files directly inside a directory, sorted by name. Name
// and NameFull are the file name.
type Dir string

func (d Dir) Images() ([]Asset, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var assets []Asset
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		assets = append(assets, Asset{
			Name:     e.Name(),
			NameFull: e.Name(),
			FilePath: filepath.Join(string(d), e.Name()),
		})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}
