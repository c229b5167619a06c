package swarm

// Everything exported here assumes a single Swarm per local peer identity.
// Running two Swarms over the same transport.Registry is legal but they
// will compete for the same listening sockets; callers that need that
// should give each Swarm its own Registry.
