// Package docstore holds thin helpers over a MongoDB collection of schools
// and students, plus an nginx request-log summary.
//
// Every helper is one request to the collection; errors from the driver are
// returned with the operation name prepended and nothing else.
//
// School documents look like:
//
//	{name: "Holberton school", topics: ["Algo", "C", "Python"]}
//
// Student documents carry scored topics:
//
//	{name: "John", topics: [{title: "Algo", score: 10.3}, ...]}
package docstore
