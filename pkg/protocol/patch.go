package protocol

import (
	"encoding/json"
	"fmt"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

// Patch operation constants.
const (
	PatchAddClass       PatchOp = 0x10 // Add CSS class
	PatchRemoveClass    PatchOp = 0x11 // Remove CSS class
	PatchAppendHeadLink PatchOp = 0x30 // Append <link rel="stylesheet"> to <head>
	PatchRemoveHeadLink PatchOp = 0x31 // Remove <head> links with a given href
	PatchURLPush        PatchOp = 0x40 // history.pushState
)

var patchOpNames = map[PatchOp]string{
	PatchAddClass:       "addClass",
	PatchRemoveClass:    "removeClass",
	PatchAppendHeadLink: "appendHeadLink",
	PatchRemoveHeadLink: "removeHeadLink",
	PatchURLPush:        "urlPush",
}

// String returns the wire name of the patch operation.
func (op PatchOp) String() string {
	if name, ok := patchOpNames[op]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the op by name so the client does not need a table
// of numeric codes.
func (op PatchOp) MarshalJSON() ([]byte, error) {
	name, ok := patchOpNames[op]
	if !ok {
		return nil, fmt.Errorf("protocol: unknown patch op 0x%02x", uint8(op))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes an op from its wire name.
func (op *PatchOp) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range patchOpNames {
		if v == name {
			*op = k
			return nil
		}
	}
	return fmt.Errorf("protocol: unknown patch op %q", name)
}

// Patch represents a single client-side mutation.
type Patch struct {
	Op    PatchOp `json:"op"`
	HID   string  `json:"hid,omitempty"`   // Target element's hydration ID
	Key   string  `json:"key,omitempty"`   // Class name
	Value string  `json:"value,omitempty"` // Href or URL
}

// PatchesFrame represents a batch of patches with sequence number.
type PatchesFrame struct {
	Seq     uint64  `json:"seq"`
	Patches []Patch `json:"patches"`
}

// NewAddClassPatch creates an AddClass patch.
func NewAddClassPatch(hid, class string) Patch {
	return Patch{Op: PatchAddClass, HID: hid, Key: class}
}

// NewRemoveClassPatch creates a RemoveClass patch.
func NewRemoveClassPatch(hid, class string) Patch {
	return Patch{Op: PatchRemoveClass, HID: hid, Key: class}
}

// NewAppendHeadLinkPatch creates a patch appending a stylesheet link.
func NewAppendHeadLinkPatch(href string) Patch {
	return Patch{Op: PatchAppendHeadLink, Value: href}
}

// NewRemoveHeadLinkPatch creates a patch removing every head link with href.
func NewRemoveHeadLinkPatch(href string) Patch {
	return Patch{Op: PatchRemoveHeadLink, Value: href}
}

// NewURLPushPatch creates a history push patch for the full URL.
func NewURLPushPatch(url string) Patch {
	return Patch{Op: PatchURLPush, Value: url}
}
