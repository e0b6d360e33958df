/*
Package navflow provides a graph-based navigation engine.

# Overview

An application's flow is a directed graph of destinations (nodes) joined by
typed transitions (edges). A Controller drives traversal of the graph as
screens complete, and keeps its model of "where we are" in step with an
external host stack (the platform's navigation stack) that may change
without asking, for example when the user swipes back.

navflow does not render anything. Screens are materialized by Presenters
and shown by a HostStack; both are interfaces the application implements.

# Building Graphs

Nodes declare the type they require and the type they produce:

	type Home struct{ navflow.Screen[navflow.Void, string] }
	type Profile struct{ navflow.Screen[string, navflow.Void] }

	g := navflow.NewGraph("root")
	g.MustAddNode(Home{navflow.NewScreen[navflow.Void, string]("home")})
	g.MustAddNode(Profile{navflow.NewScreen[string, navflow.Void]("profile")})
	g.MustAddEdge(navflow.Pass[string]("home", "profile", navflow.Push, nil))

Edges out of a node are tried in registration order and the first eligible
one wins. NewEdge takes an eligibility predicate and a transform from the
source's output to the destination's input; Pass forwards the output
unchanged; Drop ignores it.

# Subgraphs

A Subgraph wraps a nested graph with an entry and an exit node and sits in
its parent graph like any other node. Entering it is invisible to the host:
traversal continues at the entry. When a node inside has no eligible edge,
resolution climbs out one subgraph at a time and retries from the subgraph
node in its parent graph with the same output.

# Type Policy

Edge predicates and transforms are typed, but outputs travel as values of
type any. When an output does not have an edge's source type:

  - the edge is not eligible, and the mismatch is reported to observers;
  - unless the edge is a drop edge (no predicate, Void destination), which
    accepts any output and delivers Void{}.

A transform is never applied to a value its predicate rejected; if it is,
that is a ConfigurationError.

# Controller

	host := hoststack.NewMemory()
	ctrl := navflow.NewController(g, host, []navflow.Presenter{myPresenter},
	    navflow.WithLogger(logger),
	)
	err := ctrl.Start(ctx, "home", navflow.Void{})

Presenters call the Completion they are given when a screen finishes. The
controller resolves the next edge, runs headless nodes inline, and sends the
matching command to the host. After every acknowledged command and every
host notification it rebuilds its stack from the host's screens.

# Debugging

Graph offers FindPath, CanNavigate, UnreachableNodes, ContainsCycle,
Validate, PrettyPrintOutline, and Mermaid. DryRun simulates a traversal with
synthetic outputs and a hop cap.
*/
package navflow
