package model

// DefaultWaterShare is the fraction of continental water that may be
// allocated per period.
const DefaultWaterShare = 0.1

// RawParameters carries the parameters as configured: 0-based slices and
// tables, not yet checked against the set sizes.
type RawParameters struct {
	MassCapacity     []float64   `json:"mass_capacity"`     // P[j], kg
	VolumeCapacity   []float64   `json:"volume_capacity"`   // v[j], m3
	VolumeFactor     []float64   `json:"volume_factor"`     // e[j]
	WaterAllotment   []float64   `json:"water_allotment"`   // A[i], m3
	Demand           [][]float64 `json:"demand"`            // d[l][t], kg
	AnnualDemand     []float64   `json:"annual_demand"`     // alternative to Demand, spread evenly over T
	WaterUse         [][]float64 `json:"water_use"`         // a[k][l], m3/kg
	TailingsRate     [][]float64 `json:"tailings_rate"`     // rho[k][l], kg/kg
	ClosureCost      []float64   `json:"closure_cost"`      // r[j]
	InspectionCost   []float64   `json:"inspection_cost"`   // delta[j]
	WaterCost        []float64   `json:"water_cost"`        // f[k], per m3
	Distance         [][]float64 `json:"distance"`          // g[i][j]
	TransportCost    float64     `json:"transport_cost"`    // c, per kg and distance unit
	ContinentalWater float64     `json:"continental_water"` // h, m3 per period
	Budget           float64     `json:"budget"`            // b
	StorageCap       []float64   `json:"storage_cap"`       // q[i], kg
	WaterShare       float64     `json:"water_share"`       // defaults to DefaultWaterShare
}

// Clone returns a deep copy so scenario variants never alias the base data.
func (r RawParameters) Clone() RawParameters {
	out := r
	out.MassCapacity = cloneVec(r.MassCapacity)
	out.VolumeCapacity = cloneVec(r.VolumeCapacity)
	out.VolumeFactor = cloneVec(r.VolumeFactor)
	out.WaterAllotment = cloneVec(r.WaterAllotment)
	out.Demand = cloneTable(r.Demand)
	out.AnnualDemand = cloneVec(r.AnnualDemand)
	out.WaterUse = cloneTable(r.WaterUse)
	out.TailingsRate = cloneTable(r.TailingsRate)
	out.ClosureCost = cloneVec(r.ClosureCost)
	out.InspectionCost = cloneVec(r.InspectionCost)
	out.WaterCost = cloneVec(r.WaterCost)
	out.Distance = cloneTable(r.Distance)
	out.StorageCap = cloneVec(r.StorageCap)
	return out
}

func cloneVec(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

func cloneTable(t [][]float64) [][]float64 {
	if t == nil {
		return nil
	}
	out := make([][]float64, len(t))
	for i, row := range t {
		out[i] = cloneVec(row)
	}
	return out
}

// Parameters is the validated, immutable parameter set of one model build.
// It is only obtainable through NewParameters.
type Parameters struct {
	mass       map[Deposit]float64
	volume     map[Deposit]float64
	factor     map[Deposit]float64
	allotment  map[Mine]float64
	demand     map[MineralPeriod]float64
	waterUse   map[RouteMineral]float64
	rho        map[RouteMineral]float64
	closure    map[Deposit]float64
	inspection map[Deposit]float64
	waterCost  map[Route]float64
	distance   map[MineDeposit]float64
	storage    map[Mine]float64

	transport  float64
	water      float64
	budget     float64
	waterShare float64
}

// NewParameters validates raw against sets and builds the typed maps. No map
// is constructed before every dimension and value check passed.
func NewParameters(sets Sets, raw RawParameters) (*Parameters, error) {
	if err := Validate(sets, raw); err != nil {
		return nil, err
	}
	p := &Parameters{
		mass:       byDeposit(raw.MassCapacity),
		volume:     byDeposit(raw.VolumeCapacity),
		factor:     byDeposit(raw.VolumeFactor),
		allotment:  byMine(raw.WaterAllotment),
		waterUse:   byRouteMineral(raw.WaterUse),
		rho:        byRouteMineral(raw.TailingsRate),
		closure:    byDeposit(raw.ClosureCost),
		inspection: byDeposit(raw.InspectionCost),
		waterCost:  make(map[Route]float64, len(raw.WaterCost)),
		distance:   make(map[MineDeposit]float64, sets.Mines*sets.Deposits),
		storage:    byMine(raw.StorageCap),
		demand:     make(map[MineralPeriod]float64, sets.Minerals*sets.Periods),
		transport:  raw.TransportCost,
		water:      raw.ContinentalWater,
		budget:     raw.Budget,
		waterShare: raw.WaterShare,
	}
	if p.waterShare == 0 {
		p.waterShare = DefaultWaterShare
	}
	for k, v := range raw.WaterCost {
		p.waterCost[Route(k+1)] = v
	}
	for i, row := range raw.Distance {
		for j, v := range row {
			p.distance[MineDeposit{I: Mine(i + 1), J: Deposit(j + 1)}] = v
		}
	}
	if raw.Demand != nil {
		for l, row := range raw.Demand {
			for t, v := range row {
				p.demand[MineralPeriod{L: Mineral(l + 1), T: Period(t + 1)}] = v
			}
		}
	} else {
		for l, annual := range raw.AnnualDemand {
			for t := 1; t <= sets.Periods; t++ {
				p.demand[MineralPeriod{L: Mineral(l + 1), T: Period(t)}] = annual / float64(sets.Periods)
			}
		}
	}
	return p, nil
}

func byDeposit(v []float64) map[Deposit]float64 {
	out := make(map[Deposit]float64, len(v))
	for j, x := range v {
		out[Deposit(j+1)] = x
	}
	return out
}

func byMine(v []float64) map[Mine]float64 {
	out := make(map[Mine]float64, len(v))
	for i, x := range v {
		out[Mine(i+1)] = x
	}
	return out
}

func byRouteMineral(t [][]float64) map[RouteMineral]float64 {
	out := make(map[RouteMineral]float64)
	for k, row := range t {
		for l, x := range row {
			out[RouteMineral{K: Route(k + 1), L: Mineral(l + 1)}] = x
		}
	}
	return out
}

// MassCapacity is P[j].
func (p *Parameters) MassCapacity(j Deposit) float64 { return p.mass[j] }

// VolumeCapacity is v[j].
func (p *Parameters) VolumeCapacity(j Deposit) float64 { return p.volume[j] }

// VolumeFactor is e[j].
func (p *Parameters) VolumeFactor(j Deposit) float64 { return p.factor[j] }

// WaterAllotment is A[i].
func (p *Parameters) WaterAllotment(i Mine) float64 { return p.allotment[i] }

// Demand is d[l,t].
func (p *Parameters) Demand(l Mineral, t Period) float64 {
	return p.demand[MineralPeriod{L: l, T: t}]
}

// WaterUse is a[k,l].
func (p *Parameters) WaterUse(k Route, l Mineral) float64 {
	return p.waterUse[RouteMineral{K: k, L: l}]
}

// TailingsRate is rho[k,l].
func (p *Parameters) TailingsRate(k Route, l Mineral) float64 {
	return p.rho[RouteMineral{K: k, L: l}]
}

// ClosureCost is r[j].
func (p *Parameters) ClosureCost(j Deposit) float64 { return p.closure[j] }

// InspectionCost is delta[j].
func (p *Parameters) InspectionCost(j Deposit) float64 { return p.inspection[j] }

// WaterCost is f[k].
func (p *Parameters) WaterCost(k Route) float64 { return p.waterCost[k] }

// Distance is g[i,j].
func (p *Parameters) Distance(i Mine, j Deposit) float64 {
	return p.distance[MineDeposit{I: i, J: j}]
}

// StorageCap is q[i].
func (p *Parameters) StorageCap(i Mine) float64 { return p.storage[i] }

// TransportCost is c.
func (p *Parameters) TransportCost() float64 { return p.transport }

// ContinentalWater is h.
func (p *Parameters) ContinentalWater() float64 { return p.water }

// Budget is b.
func (p *Parameters) Budget() float64 { return p.budget }

// WaterShare is the allocatable fraction of h per period.
func (p *Parameters) WaterShare() float64 { return p.waterShare }
