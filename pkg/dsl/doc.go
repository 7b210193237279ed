/*
Package dsl builds conversation flows in Go instead of YAML.

The builder produces the same document a flow file decodes into, so a flow
built here goes through exactly the same checks as one loaded from disk:

	b := dsl.New("greeting").Persona("You are Sam, the host of Build Notes.")

	b.Add("greeting").
		Task("Welcome the guest and ask for their name.").
		Actions(
			dsl.Action("begin_interview").
				Describe("The guest is ready.").
				String("guest_name", "Name to introduce").
				Require("guest_name").
				To("goodbye"),
		)

	b.Add("goodbye").Task("Thank the guest.").End()

	reg, err := b.Build()

Pass the registry to hostflow.New with hostflow.WithRegistry.
*/
package dsl
