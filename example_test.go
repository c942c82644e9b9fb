package authstate_test

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authstate"
)

func Example() {
	c, err := authstate.New().Build()
	if err != nil {
		panic(err)
	}
	defer c.Close()

	c.Subscribe(func(_ context.Context, s authstate.Session) {
		fmt.Println("now", s.Phase())
	})

	ctx := context.Background()
	_ = c.Establish(ctx, authstate.Identity{ID: "1", DisplayName: "Guest", ContactAddress: "guest@example.com"})
	fmt.Println(c.GetState().Identity.DisplayName)
	_ = c.Clear(ctx)
	fmt.Println(c.GetState().Authenticated)

	// Output:
	// now identified
	// Guest
	// now anonymous
	// false
}

func ExampleWatch() {
	c, err := authstate.New().Build()
	if err != nil {
		panic(err)
	}
	defer c.Close()

	authstate.Watch(c, authstate.UserID, func(_ context.Context, id string) {
		fmt.Printf("user %q\n", id)
	})

	ctx := context.Background()
	_ = c.Establish(ctx, authstate.Identity{ID: "42", DisplayName: "Ada"})
	_ = c.Establish(ctx, authstate.Identity{ID: "42", DisplayName: "Ada L."})
	_ = c.Clear(ctx)

	// Output:
	// user "42"
	// user ""
}
