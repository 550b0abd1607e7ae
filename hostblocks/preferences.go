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

package hostblocks

import (
	"github.com/jetsetilly/emublocks/curated"
	"github.com/jetsetilly/emublocks/paths"
	"github.com/jetsetilly/emublocks/prefs"
)

// Preferences for the Table type.
type Preferences struct {
	dsk *prefs.Disk

	// the number of times GuestToHost() will ask the Materializer for a
	// missing block before giving up. zero means that it will never give up
	RetryLimit prefs.Int

	// check the block of the most recent guest lookup before scanning the
	// entire table
	FastPath prefs.Bool

	// log a summary of every new generation
	LogReplace prefs.Bool
}

const (
	defaultRetryLimit = 0
	defaultFastPath   = true
	defaultLogReplace = true
)

func (p *Preferences) String() string {
	if p.dsk == nil {
		return ""
	}
	return p.dsk.String()
}

// newPreferences is the preferred method of initialisation for the Preferences
// type. the preferences start with their default values and are not loaded
// from disk.
func newPreferences(tbl *Table) *Preferences {
	p := &Preferences{}

	p.RetryLimit.SetHookPost(func(v prefs.Value) error {
		limit := v.(int)
		if limit < 0 {
			limit = 0
		}
		tbl.retryLimit.Store(int32(limit))
		return nil
	})
	p.FastPath.SetHookPost(func(v prefs.Value) error {
		tbl.fastPath.Store(v.(bool))
		return nil
	})
	p.LogReplace.SetHookPost(func(v prefs.Value) error {
		tbl.logReplace.Store(v.(bool))
		return nil
	})

	p.SetDefaults()

	return p
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	_ = p.RetryLimit.Set(defaultRetryLimit)
	_ = p.FastPath.Set(defaultFastPath)
	_ = p.LogReplace.Set(defaultLogReplace)
}

// Load preferences from the default preferences file. A missing file is not
// an error.
func (p *Preferences) Load() error {
	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return err
	}
	return p.loadFrom(pth)
}

func (p *Preferences) loadFrom(pth string) error {
	if p.dsk == nil {
		if err := p.attach(pth); err != nil {
			return err
		}
	}

	err := p.dsk.Load(false)
	if err != nil && !curated.Is(err, prefs.NoPrefsFile) {
		return err
	}

	return nil
}

func (p *Preferences) attach(pth string) error {
	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return err
	}

	err = p.dsk.Add("hostblocks.retrylimit", &p.RetryLimit)
	if err != nil {
		return err
	}
	err = p.dsk.Add("hostblocks.fastpath", &p.FastPath)
	if err != nil {
		return err
	}
	err = p.dsk.Add("hostblocks.logreplace", &p.LogReplace)
	if err != nil {
		return err
	}

	return nil
}

// Save current preferences to the preferences file.
func (p *Preferences) Save() error {
	if p.dsk == nil {
		pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
		if err != nil {
			return err
		}
		if err := p.attach(pth); err != nil {
			return err
		}
	}
	return p.dsk.Save()
}
