/*
Copyright © 2024 the bedload authors.
This file is part of bedload.

bedload is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

bedload is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with bedload.  If not, see <http://www.gnu.org/licenses/>.
*/

package bedloadutil

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maybeDownload downloads the file at the given http:// or https:// URL
// to a temporary directory and returns the location it was downloaded to,
// along with a function that removes the temporary directory. Any other
// path is returned unchanged.
func maybeDownload(p string) (string, func(), error) {
	nothing := func() {}
	if !strings.HasPrefix(p, "http://") && !strings.HasPrefix(p, "https://") {
		return p, nothing, nil
	}
	u, err := url.Parse(p)
	if err != nil {
		return p, nothing, fmt.Errorf("bedload: parsing input URL: %v", err)
	}
	dir, err := ioutil.TempDir("", "bedload")
	if err != nil {
		return p, nothing, fmt.Errorf("bedload: creating temporary download directory: %v", err)
	}
	cleanup := func() { os.RemoveAll(dir) }
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "input.nc"
	}
	out := filepath.Join(dir, name)
	if err = downloadHTTP(p, out); err != nil {
		cleanup()
		return p, nothing, err
	}
	return out, cleanup, nil
}

// downloadHTTP downloads a file from the specified URL to the path out.
func downloadHTTP(src, out string) error {
	resp, err := http.Get(src)
	if err != nil {
		return fmt.Errorf("bedload: downloading input: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bedload: downloading %s: %s", src, resp.Status)
	}
	w, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("bedload: creating file for download: %v", err)
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return fmt.Errorf("bedload: downloading %s: %v", src, err)
	}
	return w.Close()
}
