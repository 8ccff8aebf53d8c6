// Package order implements the order aggregate and its lifecycle state machine.
//
// An order travels placed -> accepted -> preparing -> ready_for_rider ->
// rider_assigned -> picked_up -> delivered, with cancellation possible from
// any state before pickup. Which actor may request which edge is encoded in
// a closed transition table; everything else is rejected.
//
// The aggregate is mutated only through its transition methods and records
// domain events for every applied transition. Events are collected by the
// application layer after a successful commit and fanned out to the
// interested actor rooms.
package order
