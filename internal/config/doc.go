// Package config loads the elements.yaml file shared by the backend listener,
// the development proxy and the theme tooling.
//
// Every field is optional. A missing file, or a file that leaves a field out,
// falls back to the built-in defaults: the backend on :3000, the dev proxy on
// :5178 forwarding /api to http://localhost:3000 with the origin rewritten,
// and the frontend/src content glob for the theme scanner.
package config
