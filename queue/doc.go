/*
Package queue defines the tasks of growing the trees of a forest as well as an
interface for a Queue to distribute them among workers.

It also provides an in-memory implementation of the Queue interface.
*/
package queue
