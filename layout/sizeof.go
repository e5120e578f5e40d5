package layout

// ComputeGroupSize returns the size a struct (or union) group would have
// given its members' sizes and alignments alone, following the ordinary
// C layout algorithm: members are placed at increasing offsets aligned
// to their own alignment (structs) or all at offset 0 (unions), and the
// whole aggregate is padded up to a multiple of its own alignment.
//
// Callers that already know a group's Size/Align (e.g. cdecl, which gets
// them straight from a real C compiler's type layout) do not need this;
// it exists for callers hand-assembling a Group who want the size/align
// computed rather than asserted.
func ComputeGroupSize(members []Member, isUnion bool) (size, align int64) {
	offset := int64(0)
	align = 1

	for _, m := range members {
		if IsPadding(m) {
			offset += m.Layout.ByteSize()
			continue
		}
		memberAlign := m.Layout.Alignment()
		if memberAlign > align {
			align = memberAlign
		}
		if isUnion {
			if m.Layout.ByteSize() > offset {
				offset = m.Layout.ByteSize()
			}
			continue
		}
		offset = AlignUp(offset, memberAlign)
		offset += m.Layout.ByteSize()
	}

	size = AlignUp(offset, align)
	return size, align
}

// MemberOffset returns the byte offset at which member index idx would
// be placed in a struct built from members in order (unions always
// place every member at offset 0).
func MemberOffset(members []Member, isUnion bool, idx int) int64 {
	if isUnion {
		return 0
	}
	offset := int64(0)
	for i := 0; i < idx && i < len(members); i++ {
		m := members[i]
		if IsPadding(m) {
			offset += m.Layout.ByteSize()
			continue
		}
		offset = AlignUp(offset, m.Layout.Alignment())
		offset += m.Layout.ByteSize()
	}
	if idx < len(members) && !IsPadding(members[idx]) {
		offset = AlignUp(offset, members[idx].Layout.Alignment())
	}
	return offset
}
