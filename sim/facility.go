package sim

// Facility is one plant. OutputTons is derived from capacity × utilization at start
// and then mutated by transfers and production losses.
type Facility struct {
	Site         string  `json:"site" yaml:"site"`
	Country      string  `json:"country" yaml:"country"`
	CapacityTons float64 `json:"capacity_tons" yaml:"capacity_tons"`
	Utilization  float64 `json:"utilization" yaml:"utilization"`
	OutputTons   float64 `json:"output_tons" yaml:"output_tons"`
}

// FacilityTable is an ordered set of plants owned by one run.
type FacilityTable []Facility

// Clone returns an independent copy.
func (t FacilityTable) Clone() FacilityTable {
	out := make(FacilityTable, len(t))
	copy(out, t)
	return out
}

// TotalOutput sums output over all plants.
func (t FacilityTable) TotalOutput() float64 {
	total := 0.0
	for _, f := range t {
		total += f.OutputTons
	}
	return total
}

// CountryOutput sums output over the plants in country.
func (t FacilityTable) CountryOutput(country string) float64 {
	total := 0.0
	for _, f := range t {
		if f.Country == country {
			total += f.OutputTons
		}
	}
	return total
}

// CountryShare is country's share of total output; 0 when total output is 0.
func (t FacilityTable) CountryShare(country string) float64 {
	total := t.TotalOutput()
	if total <= 0 {
		return 0
	}
	return t.CountryOutput(country) / total
}

// ScaleCountry multiplies the output of every plant in country by factor.
func (t FacilityTable) ScaleCountry(country string, factor float64) {
	for i := range t {
		if t[i].Country == country {
			t[i].OutputTons *= factor
		}
	}
}

// ScaleAll multiplies the output of every plant by factor.
func (t FacilityTable) ScaleAll(factor float64) {
	for i := range t {
		t[i].OutputTons *= factor
	}
}

// TransferToCountry moves up to volume tons of output from the plants in from to the
// first plant in to, bounded by that plant's free capacity and by the source output.
// Sources give up output in proportion to their current output. Returns the tons moved.
func (t FacilityTable) TransferToCountry(from, to string, volume float64) float64 {
	dest := -1
	for i := range t {
		if t[i].Country == to {
			dest = i
			break
		}
	}
	sourceTotal := t.CountryOutput(from)
	if dest < 0 || sourceTotal <= 0 || from == to {
		return 0
	}
	free := t[dest].CapacityTons - t[dest].OutputTons
	moved := max(0, min(volume, free, sourceTotal))
	if moved == 0 {
		return 0
	}
	for i := range t {
		if t[i].Country == from {
			t[i].OutputTons -= moved * (t[i].OutputTons / sourceTotal)
		}
	}
	t[dest].OutputTons += moved
	return moved
}

// RefreshUtilization recomputes utilization from output; plants without capacity get 0.
func (t FacilityTable) RefreshUtilization() {
	for i := range t {
		if t[i].CapacityTons > 0 {
			t[i].Utilization = t[i].OutputTons / t[i].CapacityTons
		} else {
			t[i].Utilization = 0
		}
	}
}
