// Package testutil provides the lifecycle contract and helpers for test
// components such as the fake API server in apitest.
//
//	func TestGetUser(t *testing.T) {
//	    api := apitest.NewServer()
//	    testutil.T(t).Setup(api)
//	    ...
//	    testutil.T(t).Reset(api)
//	}
//
// A TestComponent is a component.Component that can also be reset to its
// initial state, and snapshotted and restored, between test cases.
package testutil
