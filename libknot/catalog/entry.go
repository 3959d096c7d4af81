package catalog

import (
	"github.com/gogo/protobuf/proto"
)

// Entry is the stored value of one (kind, PD code) catalog key.
type Entry struct {
	Value     string `protobuf:"bytes,1,opt,name=value,proto3" json:"value,omitempty"`
	Crossings int32  `protobuf:"varint,2,opt,name=crossings,proto3" json:"crossings,omitempty"`
}

func (m *Entry) Reset()         { *m = Entry{} }
func (m *Entry) String() string { return proto.CompactTextString(m) }
func (*Entry) ProtoMessage()    {}

// State is the catalog header, stored under its own key.
type State struct {
	MajorVers  int32   `protobuf:"varint,1,opt,name=major_vers,json=majorVers,proto3" json:"major_vers,omitempty"`
	MinorVers  int32   `protobuf:"varint,2,opt,name=minor_vers,json=minorVers,proto3" json:"minor_vers,omitempty"`
	NumEntries []int64 `protobuf:"varint,3,rep,packed,name=num_entries,json=numEntries,proto3" json:"num_entries,omitempty"`
}

func (m *State) Reset()         { *m = State{} }
func (m *State) String() string { return proto.CompactTextString(m) }
func (*State) ProtoMessage()    {}
