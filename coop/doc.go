// Package coop runs tasks cooperatively, one at a time, on an event loop.
//
// Each task has its own goroutine, but only the task currently stepped by
// the loop executes: a step hands control to the task, and blocks the loop
// until the task parks (in a blocking operation from the chans package) or
// returns. Parked tasks are stepped again, via [Loop.Submit], once the
// operation they are waiting on completes, or their context is done.
//
// The result is the single, cooperative scheduler that the chans package
// is designed around, with suspension occurring only at blocking channel
// operations.
//
//	sched, err := coop.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ch := chans.NewUnicast[int]()
//	sched.Go(ctx, func(ctx context.Context) error {
//	    return ch.Send(ctx, 1)
//	})
//	sched.Go(ctx, func(ctx context.Context) error {
//	    v, err := ch.Receive(ctx)
//	    fmt.Println(v)
//	    return err
//	})
//	if err := sched.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package coop
