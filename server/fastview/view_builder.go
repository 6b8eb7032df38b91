package fastview

import (
	"context"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

// ViewBuilderFunc builds a view from its view-model channel. The done channel closes
// when the view's goroutines must exit.
type ViewBuilderFunc[ViewModel any] func(done <-chan struct{}, models <-chan ViewModel) ViewComponent

// ViewBuilder wires a source of data models to one or more views sharing a view-model:
// every data model is converted once and broadcast to each view.
//
//	views, err := NewViewBuilder[simulation.Snapshot, cell_views.Board]().
//		WithContext(ctx).
//		WithModel(snapshots, cell_views.Convert).
//		WithView(gridBuilder).
//		WithView(surfaceBuilder).
//		Build()
//
// Building is deferred to Build() so that the number of views is known when the
// view-model channel is multiplexed.
type ViewBuilder[DataModel any, ViewModel any] struct {
	source   <-chan DataModel
	convert  func(DataModel) ViewModel
	builders []ViewBuilderFunc[ViewModel]
	done     <-chan struct{} // nil never closes
}

func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithModel sets the data source and its conversion to the view-model.
func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = input
	vb.convert = convert
	return vb
}

// WithView adds a view. Views are returned by Build in the order they were added.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	builder ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.builders = append(vb.builders, builder)
	return vb
}

// WithContext closes every channel built when ctx is done.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.done = ctx.Done()
	return vb
}

// ErrNoViews is returned when Build() is called before the caller has added any views.
var ErrNoViews error = errors.New("no views to build: WithView must be called")

// ErrNoModel is returned when Build() is called without a source or conversion.
var ErrNoModel error = errors.New("no model specified: WithModel must be called")

// Build starts the conversion and broadcast goroutines and builds the views.
func (vb *ViewBuilder[DataModel, ViewModel]) Build() ([]ViewComponent, error) {
	if len(vb.builders) == 0 {
		return nil, ErrNoViews
	}
	if vb.source == nil || vb.convert == nil {
		return nil, ErrNoModel
	}

	models := channerics.Convert(vb.done, vb.source, vb.convert)
	// Broadcast hands each model to every view before taking the next one, so the slowest
	// view sets the pace for all of them. With a handful of views on one page that is fine;
	// TODO: give each view a one-slot latest-value buffer if a heavier view is ever added.
	perView := channerics.Broadcast(vb.done, models, len(vb.builders))

	views := make([]ViewComponent, len(vb.builders))
	for i, build := range vb.builders {
		views[i] = build(vb.done, perView[i])
	}
	return views, nil
}
