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

// Package prefs facilitates the storage of preferential values in the
// program. Preferences are values that the user can change and which are
// persisted to disk.
//
// A preference value is declared as one of the types in this package (Bool,
// Int, String) and then added to a Disk instance with a key:
//
//	var limit prefs.Int
//	dsk, _ := prefs.NewDisk(pth)
//	dsk.Add("hostblocks.retrylimit", &limit)
//	dsk.Load(true)
//
// Values can be changed at any time with Set(). A hook can be attached with
// SetHookPost() so that a change is acted upon immediately.
//
// The file format is simple. A boilerplate warning line followed by one
// key/value pair per line, separated by the " :: " string. A file may be shared
// by many Disk instances. Save() will not clobber keys that belong to another
// instance.
//
// Values can also be specified on the command line with the command line
// stack. See PushCommandLineStack() for details. Command line values override
// values found on disk during Load().
package prefs
