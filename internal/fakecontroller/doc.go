// Package fakecontroller provides an in-memory implementation of the Kvrocks
// controller /api/v1 routes for tests.
//
// It follows the controller's response conventions: successful reads answer
// {"data": {...}}, creations answer 201 with a non-null data member (node
// creation answers {"data": null}), deletions answer 204 with no body, and
// failures answer {"error": {"message": "..."}} with a 4xx status.
package fakecontroller
