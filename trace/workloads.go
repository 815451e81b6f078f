package trace

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/sarchlab/cachesim/cache"
)

// GenOptions parameterizes the synthetic workloads.
type GenOptions struct {
	// Count is the number of records to generate
	Count int
	// Base is the first address
	Base uint64
	// Stride is the distance in bytes between consecutive accesses
	Stride uint64
	// Footprint is the size in bytes of the region a workload cycles over
	Footprint uint64
	// Seed drives the random workloads
	Seed uint64
}

// DefaultGenOptions returns options suitable for small classroom caches.
func DefaultGenOptions() GenOptions {
	return GenOptions{
		Count:     1000,
		Base:      0x1000,
		Stride:    4,
		Footprint: 4096,
		Seed:      1,
	}
}

// Workload is a named synthetic access pattern.
type Workload struct {
	// Name identifies the workload
	Name string
	// Description explains what cache behaviour the workload exercises
	Description string
	// Generate produces the records
	Generate func(opts GenOptions) []Record
}

// GetWorkloads returns the standard set of synthetic workloads.
func GetWorkloads() []Workload {
	return []Workload{
		sequential(),
		strided(),
		loop(),
		random(),
		mixed(),
	}
}

// WorkloadNames lists the names of the standard workloads, sorted.
func WorkloadNames() []string {
	var names []string
	for _, w := range GetWorkloads() {
		names = append(names, w.Name)
	}

	sort.Strings(names)

	return names
}

// Generate produces the records of the named workload.
func Generate(name string, opts GenOptions) ([]Record, error) {
	for _, w := range GetWorkloads() {
		if w.Name == name {
			return w.Generate(opts), nil
		}
	}

	return nil, fmt.Errorf("unknown workload %q", name)
}

func sequential() Workload {
	return Workload{
		Name:        "sequential",
		Description: "reads walking forward through memory - spatial locality only",
		Generate: func(opts GenOptions) []Record {
			records := make([]Record, opts.Count)
			for i := range records {
				addr := opts.Base + uint64(i)*opts.Stride
				records[i] = NewRecord(cache.Read, addr)
			}
			return records
		},
	}
}

func strided() Workload {
	return Workload{
		Name:        "strided",
		Description: "reads and writes one footprint apart - maps to a single set",
		Generate: func(opts GenOptions) []Record {
			records := make([]Record, opts.Count)
			for i := range records {
				kind := cache.Read
				if i%4 == 3 {
					kind = cache.Write
				}

				addr := opts.Base + uint64(i%8)*opts.Footprint
				records[i] = NewRecord(kind, addr)
			}
			return records
		},
	}
}

func loop() Workload {
	return Workload{
		Name:        "loop",
		Description: "repeated sweeps over a footprint - temporal locality",
		Generate: func(opts GenOptions) []Record {
			perSweep := max(opts.Footprint/max(opts.Stride, 1), 1)

			records := make([]Record, opts.Count)
			for i := range records {
				offset := uint64(i) % perSweep * opts.Stride
				records[i] = NewRecord(cache.Read, opts.Base+offset)
			}
			return records
		},
	}
}

func random() Workload {
	return Workload{
		Name:        "random",
		Description: "uniform random reads and writes within the footprint",
		Generate: func(opts GenOptions) []Record {
			rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
			footprint := max(opts.Footprint, 1)

			records := make([]Record, opts.Count)
			for i := range records {
				kind := cache.Read
				if rng.IntN(4) == 0 {
					kind = cache.Write
				}

				addr := opts.Base + rng.Uint64N(footprint)
				records[i] = NewRecord(kind, addr)
			}
			return records
		},
	}
}

func mixed() Workload {
	return Workload{
		Name:        "mixed",
		Description: "instruction fetch stream interleaved with data accesses",
		Generate: func(opts GenOptions) []Record {
			rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed+1))
			dataBase := opts.Base + max(opts.Footprint, 1)*16
			footprint := max(opts.Footprint, 1)

			records := make([]Record, 0, opts.Count)
			pc := opts.Base
			for len(records) < opts.Count {
				records = append(records, NewRecord(cache.InstrFetch, pc))
				pc += 4
				if pc >= opts.Base+footprint {
					pc = opts.Base
				}

				if len(records) < opts.Count && rng.IntN(3) == 0 {
					kind := cache.Read
					if rng.IntN(3) == 0 {
						kind = cache.Write
					}

					addr := dataBase + rng.Uint64N(footprint)
					records = append(records, NewRecord(kind, addr))
				}
			}
			return records
		},
	}
}
