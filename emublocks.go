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

package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/emublocks/assert"
	"github.com/jetsetilly/emublocks/hostblocks"
	"github.com/jetsetilly/emublocks/hostmem"
	"github.com/jetsetilly/emublocks/logger"
	"github.com/jetsetilly/emublocks/modalflag"
	"github.com/jetsetilly/emublocks/prefs"
	"github.com/jetsetilly/emublocks/statsview"
	"github.com/jetsetilly/emublocks/topology"
	"github.com/jetsetilly/emublocks/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	os.Exit(launch(md, os.Args[1:]))
}

// launch returns the value to be used with os.Exit()
func launch(md *modalflag.Modes, args []string) int {
	md.NewArgs(args)
	md.AddSubModes("RUN", "CHECK", "DUMP", "STRESS")
	showVersion := md.AddBool("version", false, "print version and exit")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		return 10
	}

	if *showVersion {
		fmt.Println(version.String())
		return 0
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "CHECK":
		err = check(md)
	case "DUMP":
		err = dump(md)
	case "STRESS":
		err = stress(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md, err)
		return 20
	}

	return 0
}

// flags common to every mode. must be called after NewMode() and before
// Parse()
type common struct {
	log   *bool
	prefs *string
}

func addCommon(md *modalflag.Modes) common {
	return common{
		log:   md.AddBool("log", false, "echo log to stderr"),
		prefs: md.AddString("prefs", "", "preferences for this run only (key::value; key::value)"),
	}
}

// apply the common flags. the returned function should be deferred
func (c common) apply() func() {
	if *c.log {
		logger.SetEcho(logger.EchoWriter(os.Stderr), false)
	} else {
		logger.SetEcho(nil, false)
	}

	prefs.PushCommandLineStack(*c.prefs)
	return func() {
		prefs.PopCommandLineStack()
	}
}

// create a table and a topology from the named topology file. the topology
// has been applied to the table when the function returns without error
func loadTopology(filename string) (*topology.Topology, *hostmem.Arena, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	tbl := hostblocks.NewTable(nil)
	if err := tbl.Prefs.Load(); err != nil {
		return nil, nil, err
	}

	arena := hostmem.NewArena()
	tp := topology.NewTopology(arena, tbl)

	if err := tp.Parse(f); err != nil {
		_ = tp.Release()
		return nil, nil, err
	}
	if err := tp.Apply(); err != nil {
		_ = tp.Release()
		return nil, nil, err
	}

	return tp, arena, nil
}

func run(md *modalflag.Modes) error {
	md.NewMode()
	md.AdditionalHelp("each address is translated to a host pointer and back again")
	c := addCommon(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	defer c.apply()()

	if len(md.RemainingArgs()) < 2 {
		return fmt.Errorf("topology file and at least one guest address required for %s mode", md)
	}

	tp, arena, err := loadTopology(md.GetArg(0))
	if err != nil {
		return err
	}
	defer tp.Release()

	tbl := tp.Table()

	for _, a := range md.RemainingArgs()[1:] {
		v, err := strconv.ParseUint(a, 0, 32)
		if err != nil {
			return fmt.Errorf("not a guest address: %s", a)
		}
		address := uint32(v)

		ptr, err := tbl.GuestToHost(address)
		if err != nil {
			return err
		}

		label := "unknown"
		if r, offset, ok := arena.Lookup(ptr); ok {
			label = fmt.Sprintf("%s+%#x", r.Label(), offset)
		}

		fmt.Printf("%#08x -> %s (%s) -> %#08x\n", address, ptr, label, tbl.HostToGuest(ptr))
	}

	s := tbl.Stats()
	fmt.Printf("generation %d: %d blocks in %d groups, %d materializations\n",
		s.Generation, s.Blocks, s.Groups, s.Materializations)

	return nil
}

func check(md *modalflag.Modes) error {
	md.NewMode()
	c := addCommon(md)
	blocks := md.AddBool("blocks", false, "list every block in the table")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	defer c.apply()()

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("topology file required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	tp, _, err := loadTopology(md.GetArg(0))
	if err != nil {
		return err
	}
	defer tp.Release()

	fmt.Print(tp)
	if *blocks {
		for _, b := range tp.Table().Snapshot() {
			fmt.Println(b)
		}
	}
	fmt.Println("topology is valid")

	return nil
}

func dump(md *modalflag.Modes) error {
	md.NewMode()
	md.AdditionalHelp("output is in graphviz dot format")
	c := addCommon(md)
	touch := md.AddString("touch", "", "guest addresses to translate before dumping (comma separated)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	defer c.apply()()

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("one topology file required for %s mode", md)
	}

	tp, _, err := loadTopology(md.GetArg(0))
	if err != nil {
		return err
	}
	defer tp.Release()

	// translating addresses materializes lazy regions and sets hints, both
	// of which are visible in the dump
	if *touch != "" {
		for _, a := range strings.Split(*touch, ",") {
			v, err := strconv.ParseUint(strings.TrimSpace(a), 0, 32)
			if err != nil {
				return fmt.Errorf("not a guest address: %s", a)
			}
			if _, err := tp.Table().GuestToHost(uint32(v)); err != nil {
				return err
			}
		}
	}

	snapshot := tp.Table().Snapshot()
	memviz.Map(os.Stdout, &snapshot)

	return nil
}

func stress(md *modalflag.Modes) error {
	md.NewMode()
	c := addCommon(md)
	workers := md.AddInt("workers", 4, "number of concurrent lookup workers")
	duration := md.AddDuration("duration", 5*time.Second, "length of stress test")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%t)", statsview.Available()))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	defer c.apply()()

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("one topology file required for %s mode", md)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	tp, _, err := loadTopology(md.GetArg(0))
	if err != nil {
		return err
	}
	defer tp.Release()

	var regions []*topology.Region
	var origins [][]uint32
	for _, n := range tp.Regions() {
		if r, ok := tp.Region(n); ok {
			regions = append(regions, r)
			origins = append(origins, r.Origins())
		}
	}
	if len(regions) == 0 {
		return fmt.Errorf("topology has no regions")
	}

	tbl := tp.Table()

	var lookups atomic.Uint64
	var mismatches atomic.Uint64

	done := make(chan bool)
	var wg sync.WaitGroup

	for range *workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Logf(logger.Allow, "stress", "worker %d started", assert.GetGoRoutineID())

			for {
				select {
				case <-done:
					logger.Logf(logger.Allow, "stress", "worker %d finished", assert.GetGoRoutineID())
					return
				default:
				}

				ri := rand.IntN(len(regions))
				o := origins[ri][rand.IntN(len(origins[ri]))]
				address := o + rand.Uint32N(regions[ri].Size)

				ptr, err := tbl.GuestToHost(address)
				if err != nil {
					logger.Logf(logger.Allow, "stress", "worker %d: %v", assert.GetGoRoutineID(), err)
					mismatches.Add(1)
					continue
				}

				// other workers may have moved the hint to another mirror of
				// the region. the reverse translation is correct if it leads
				// back to the same host memory
				back := tbl.HostToGuest(ptr)
				if back != address {
					p, err := tbl.GuestToHost(back)
					if err != nil || p != ptr {
						mismatches.Add(1)
					}
				}
				lookups.Add(1)
			}
		}()
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Reset(os.Interrupt)

	timeout := time.After(*duration)
	var replacements int

	// reshape the topology until the time runs out. regions are split at
	// random offsets and later unsplit, which forces hints to migrate
loop:
	for {
		select {
		case <-timeout:
			break loop
		case <-intChan:
			fmt.Print("\r")
			break loop
		default:
		}

		r := regions[rand.IntN(len(regions))]
		if r.Size > 1 && rand.IntN(2) == 0 {
			err = tp.Split(r.Name, 1+rand.Uint32N(r.Size-1))
		} else {
			err = tp.Unsplit(r.Name)
		}
		if err != nil {
			break loop
		}

		if err = tp.Apply(); err != nil {
			break loop
		}
		replacements++
	}

	close(done)
	wg.Wait()

	if err != nil {
		return err
	}

	s := tbl.Stats()
	fmt.Printf("%d lookups, %d replacements, %d mismatches\n", lookups.Load(), replacements, mismatches.Load())
	fmt.Printf("generation %d: %d blocks in %d groups, %d misses, %d materializations\n",
		s.Generation, s.Blocks, s.Groups, s.Misses, s.Materializations)

	if mismatches.Load() > 0 {
		return fmt.Errorf("round trip translation failed %d times", mismatches.Load())
	}

	return nil
}
