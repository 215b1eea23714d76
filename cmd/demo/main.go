package main

import (
	"context"
	"fmt"
	"time"

	"github.com/comalice/scopex/internal/core"
	"github.com/comalice/scopex/internal/extensibility"
	"github.com/comalice/scopex/internal/primitives"
	"github.com/comalice/scopex/internal/production"
)

func main() {
	plan, err := primitives.NewPlanBuilder("peripheral-bringup").
		Resource("power").Describe("main rail").
		Resource("bus").Describe("peripheral bus").After("power").
		Resource("dma").Describe("dma channel").After("bus").ReleaseTimeout(50 * time.Millisecond).
		Resource("sensor").Describe("imu").After("bus").
		Build()
	if err != nil {
		panic(err)
	}

	reg := core.NewRegistry()
	for id := range plan.Resources {
		if err := reg.RegisterFunc(id, func(ctx context.Context) (any, func() error, error) {
			fmt.Printf("up:   %s\n", id)
			return id, func() error {
				fmt.Printf("down: %s\n", id)
				return nil
			}, nil
		}); err != nil {
			panic(err)
		}
	}

	persister, err := production.NewFilePersister("/tmp", production.FormatJSON)
	if err != nil {
		panic(err)
	}

	events := make(chan core.LifecycleEvent, 100)
	publisher := production.NewChannelPublisher(events)

	runner := extensibility.NewWatchdogRunner(extensibility.DefaultReleaseRunner{}, nil)

	engine, err := core.NewEngine(plan, reg,
		core.WithPersister(persister),
		core.WithPublisher(publisher),
		core.WithReleaseRunner(runner),
		core.WithAcquirer(extensibility.NewGroupAcquirer(2)),
	)
	if err != nil {
		panic(err)
	}

	trace, err := engine.Run(context.Background(), func(ctx context.Context, s *core.Session) error {
		fmt.Println("body: reading", s.MustValue("sensor"))
		return nil
	})
	if err != nil {
		panic(err)
	}

	visualizer := &production.DefaultVisualizer{}
	fmt.Println(visualizer.ExportDOT(plan, trace.Releases()))

	if err := publisher.Close(); err != nil {
		panic(err)
	}
	for ev := range events {
		fmt.Printf("event: %-14s %s\n", ev.Kind, ev.ResourceID)
	}
	fmt.Printf("trace: %d steps in %v\n", len(trace.Steps), trace.End.Sub(trace.Start))
}
