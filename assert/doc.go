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

// Package assert contains helpers for checking assumptions about the running
// program. They are intended for diagnostic output and tests only.
package assert
