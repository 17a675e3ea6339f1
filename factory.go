package ecs

type factory struct{}

// Factory groups the constructors of the package's main types.
var Factory factory

func (f factory) NewWorld(cfg Config, opts ...WorldOption) (*World, error) {
	return NewWorld(cfg, opts...)
}

func (f factory) NewScheduler() *Scheduler {
	return NewScheduler()
}

func (f factory) NewQuery(with ...ComponentID) *Query {
	return NewQuery(with...)
}

func (f factory) NewCursor(query *Query, w *World) *Cursor {
	return newCursor(query, w)
}

func (f factory) NewApp(cfg Config, opts ...WorldOption) (*App, error) {
	return NewApp(cfg, opts...)
}
