// Package models defines the core domain models for SplitSync.
//
// # Aggregates
//
//   - User: a registered account, identified by email
//   - Group: a named set of members who share expenses
//   - Member: one user's membership record within a group
//   - Expense: an amount paid by one member, split among participants
//   - SplitShare: one participant's computed portion of an expense
//   - Settlement: a recorded payment between two members reducing their balance
//
// A Group owns its members, expenses, and settlements; an Expense owns its
// split shares. Deleting a group cascades through everything it owns.
//
// All currency fields are money.Money (integer cents); floating point never
// touches an amount. Relationships use ID strings rather than pointers so
// models stay cycle-free and serializable.
package models
