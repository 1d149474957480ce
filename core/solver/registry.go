package solver

import "github.com/kilianp07/tailings/core/factory"

var registry = factory.NewRegistry[Solver]()

// Register makes a solver backend available under name.
func Register(name string, f factory.Factory[Solver]) error {
	return registry.Register(name, f)
}

// New instantiates the backend selected by cfg.
func New(cfg factory.ModuleConfig) (Solver, error) {
	return registry.Create(cfg)
}

// Backends lists the registered backend names.
func Backends() []string {
	return registry.Names()
}
