// Package buffer provides the bounded, blocking element queue that sits
// between a generation stream producer and its consumer.
//
// A Queue blocks Add while full and Next while empty. The producer ends the
// stream with CloseWrite (remaining elements stay readable, then Next returns
// ErrIteratorDone) or CloseWithError (pending and future calls fail
// immediately with the given error).
//
//	q := buffer.NewQueue[*Event](32)
//	go func() {
//	    defer q.CloseWrite()
//	    for _, e := range events {
//	        if err := q.Add(e); err != nil {
//	            return
//	        }
//	    }
//	}()
//	for {
//	    e, err := q.Next()
//	    if errors.Is(err, buffer.ErrIteratorDone) {
//	        break
//	    }
//	    ...
//	}
package buffer
