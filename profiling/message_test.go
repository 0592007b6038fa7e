package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeMessageScenarioSix(t *testing.T) {
	assert := assert.New(t)

	msg, err := ParseTimeMessage("L;0;start,-1#;1000")
	assert.NoError(err)
	assert.Equal("L", msg.Lineage)
	assert.Equal(0, msg.PartitionID)
	assert.EqualValues(1000, msg.TimeMillis)
	assert.Equal([]ParentRef{{Lineage: "start", PartitionID: -1}}, msg.Parents)
}

func TestParseTimeMessageMultipleParents(t *testing.T) {
	assert := assert.New(t)

	msg, err := ParseTimeMessage("J;2;a,0#b,1;500")
	assert.NoError(err)
	assert.Equal("J", msg.Lineage)
	assert.Equal(2, msg.PartitionID)
	assert.Equal([]ParentRef{{Lineage: "a", PartitionID: 0}, {Lineage: "b", PartitionID: 1}}, msg.Parents)
}

func TestParseTimeMessageNoParents(t *testing.T) {
	assert := assert.New(t)

	msg, err := ParseTimeMessage("start;-1;;0")
	assert.NoError(err)
	assert.Empty(msg.Parents)
}

func TestParseTimeMessageRejectsWrongFieldCount(t *testing.T) {
	assert := assert.New(t)
	_, err := ParseTimeMessage("L;0;1000")
	assert.Error(err)
}

func TestParseTimeMessageRejectsNonIntegerPartition(t *testing.T) {
	assert := assert.New(t)
	_, err := ParseTimeMessage("L;x;start,-1#;1000")
	assert.Error(err)
}

func TestParseTimeMessageRejectsMalformedParentGroup(t *testing.T) {
	assert := assert.New(t)
	_, err := ParseTimeMessage("L;0;start#;1000")
	assert.Error(err)
}

func TestParseSizeMessages(t *testing.T) {
	assert := assert.New(t)

	msgs, err := ParseSizeMessages("a:100;b:200")
	assert.NoError(err)
	assert.Equal([]SizeMessage{{Lineage: "a", Bytes: 100}, {Lineage: "b", Bytes: 200}}, msgs)
}

func TestParseSizeMessagesRejectsMissingColon(t *testing.T) {
	assert := assert.New(t)
	_, err := ParseSizeMessages("a100")
	assert.Error(err)
}
