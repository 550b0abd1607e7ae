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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error. The pattern is kept with the error
// and is used to identify it later.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. For example:
//
//	e := curated.Errorf("unmapped address: %#08x", addr)
//
//	if curated.Is(e, "unmapped address: %#08x") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain. A chain is built by passing a curated error as one of the
// values to Errorf().
//
//	f := curated.Errorf("replace: %v", e)
//
//	curated.Has(f, "unmapped address: %#08x") // true
//	curated.Is(f, "unmapped address: %#08x")  // false
//
// The IsAny() function answers whether the error was created by
// curated.Errorf() at all. We think of curated errors as "expected" errors and
// everything else as "unexpected".
//
// The Error() implementation normalises the chain so that it does not contain
// duplicate adjacent parts. Parts are separated by the sub-string ": ". So:
//
//	curated.Errorf("table: %v", curated.Errorf("table: %v", "bad size"))
//
// prints as "table: bad size" and not "table: table: bad size".
//
// Patterns should be stored as exported const strings in the package that
// creates the error, suitably named and commented.
package curated
