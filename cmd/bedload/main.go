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

// Command bedload is a command-line interface for calculating bedload
// sediment transport from FVCOM ocean model output.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/bedload/bedloadutil"
)

func main() {
	if err := bedloadutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
