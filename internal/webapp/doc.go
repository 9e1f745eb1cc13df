// Package webapp is the small web application that configuration files
// describe. It is what the interactive shell is bootstrapped against: an App
// routing requests with chi, its Registry of settings and routes, a root
// resource built per request, and a request object to experiment with.
package webapp
