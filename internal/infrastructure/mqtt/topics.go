package mqtt

// Topic structure for Exposure Core.
//
// All topics live under the "exposure/" prefix:
//
//	exposure/system/status      - retained service status (online/offline, LWT)
//	exposure/topology/snapshot  - retained topology published by the bridge
//	exposure/topology/request   - request a fresh snapshot from the bridge
//	exposure/artifact/updated   - event emitted after a successful save
const topicPrefix = "exposure"

// Topics builds topic strings. Zero value is ready to use.
type Topics struct{}

// SystemStatus is the retained service status topic, also used for the LWT.
func (Topics) SystemStatus() string {
	return topicPrefix + "/system/status"
}

// TopologySnapshot is the retained topic the bridge publishes the full
// area/device/entity topology to.
func (Topics) TopologySnapshot() string {
	return topicPrefix + "/topology/snapshot"
}

// TopologyRequest asks the bridge to re-publish the topology snapshot.
func (Topics) TopologyRequest() string {
	return topicPrefix + "/topology/request"
}

// ArtifactUpdated is published after the managed artifact is rewritten,
// so the bridge can reload its entity exposure set.
func (Topics) ArtifactUpdated() string {
	return topicPrefix + "/artifact/updated"
}
