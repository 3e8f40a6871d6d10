// Package it holds the integration harness: an in-process loopback network
// of fake vaults servicing client requests, and smoke tests driving the
// full path from facade call to delivered responses through it.
package it
