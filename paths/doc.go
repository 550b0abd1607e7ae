// This file is part of Emublocks.
//
// Emublocks is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emublocks is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emublocks.  If not, see <https://www.gnu.org/licenses/>.

// Package paths contains functions to prepare paths for resources. Resources
// are files that are loaded and saved by the program, such as the preferences
// file.
//
// The ResourcePath() function should be used to specify the path of every
// resource. Directories in the path are created as required. For release
// builds (build tag "release") the base directory is placed in the user's
// configuration directory. Otherwise the base directory is placed in the
// current working directory.
package paths
