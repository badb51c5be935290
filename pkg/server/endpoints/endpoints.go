package endpoints

import "github.com/doodlesbykumbi/ownership-manager/pkg/server"

// RegisterAll wires every endpoint group onto the server's router.
func RegisterAll(s *server.Server) {
	RegisterStatusEndpoints(s)
	RegisterTenantEndpoints(s)
	RegisterSyncEndpoints(s)
	RegisterInventoryEndpoints(s)
	RegisterTransferEndpoints(s)
}
