package planner

import (
	"fmt"
	"strconv"

	"github.com/discjenny/paldesigner/internal/gvas"
	"github.com/discjenny/paldesigner/internal/rawcodec"
)

type slotRef struct {
	SlotIndex  int
	InstanceID string
}

// CharacterProgressFunc is invoked during Phase B's character walk: on
// completion, every 64 entries, and on selection-state changes, per
// spec §4.9's 90-98% progress band. total is the size of
// CharacterSaveParameterMap; processed counts entries visited so far;
// selected counts entries retained after the required-set filter.
type CharacterProgressFunc func(processed, selected, total int)

// Extract walks tree's worldSaveData subtree and produces the full set
// of planner rows, per spec §4.8's two-phase algorithm: Phase A builds
// the base->container and container->slots lookup maps and the
// resulting assignment rows plus a "required set" of instance ids;
// Phase B walks CharacterSaveParameterMap, filtering zero-PlayerUId
// entries that aren't in the required set. onProgress may be nil.
func Extract(tree *gvas.Tree, codecs *rawcodec.Registry, hints map[string]string, rawFileRef string, onProgress CharacterProgressFunc) (Result, Stats, error) {
	worldSave, ok := fieldMap(tree.Root, "worldSaveData")
	if !ok {
		return Result{}, Stats{}, fmt.Errorf("planner: worldSaveData not present in tree")
	}

	baseToContainer, err := extractBaseToContainer(worldSave, codecs)
	if err != nil {
		return Result{}, Stats{}, err
	}

	containerSlots, err := extractContainerSlots(worldSave, codecs)
	if err != nil {
		return Result{}, Stats{}, err
	}

	var assignments []BaseAssignment
	required := make(map[string]struct{})
	for baseID, containerID := range baseToContainer {
		for _, slot := range containerSlots[containerID] {
			assignments = append(assignments, BaseAssignment{
				BaseID:           baseID,
				PalInstanceID:    slot.InstanceID,
				AssignmentKind:   "base_slot",
				AssignmentTarget: strconv.Itoa(slot.SlotIndex),
				Priority:         slot.SlotIndex,
				RawFileRef:       rawFileRef,
				RawEntityPath:    fmt.Sprintf("worldSaveData.BaseCampSaveData[%s]", baseID),
			})
			required[slot.InstanceID] = struct{}{}
		}
	}

	players, pals, charTotal, charSelected, err := extractCharacters(worldSave, hints, required, rawFileRef, onProgress)
	if err != nil {
		return Result{}, Stats{}, err
	}

	baseIDs := make(map[string]struct{}, len(baseToContainer))
	for base := range baseToContainer {
		baseIDs[base] = struct{}{}
	}
	containerIDs := make(map[string]struct{}, len(containerSlots))
	for container := range containerSlots {
		containerIDs[container] = struct{}{}
	}

	stats := Stats{
		BaseCampCount:        len(baseIDs),
		ContainerCount:       len(containerIDs),
		CharacterMapTotal:    charTotal,
		CharacterMapSelected: charSelected,
		CharacterMapDecoded:  charTotal,
	}

	return Result{Players: players, Pals: pals, Assignments: assignments}, stats, nil
}

func extractBaseToContainer(worldSave *gvas.PropertyMap, codecs *rawcodec.Registry) (map[string]string, error) {
	baseToContainer := make(map[string]string)

	baseCampMap, ok := fieldMapValue(worldSave, "BaseCampSaveData")
	if !ok {
		return baseToContainer, nil
	}

	for _, valueProps := range baseCampMap.Values.Props {
		if valueProps == nil {
			continue
		}

		rawBytes, ok := fieldBytes(valueProps, "RawData")
		if !ok {
			continue
		}
		_, decoded, err := codecs.DecodeRaw(".worldSaveData.BaseCampSaveData.Value.RawData", rawBytes)
		if err != nil {
			return nil, fmt.Errorf("planner: decode base camp: %w", err)
		}
		bc, ok := decoded.(rawcodec.BaseCampValue)
		if !ok {
			continue
		}
		baseID := normalizeGUID(bc.ID)

		workerDirector, ok := fieldMap(valueProps, "WorkerDirector")
		if !ok {
			continue
		}
		wdBytes, ok := fieldBytes(workerDirector, "RawData")
		if !ok {
			continue
		}
		_, wdDecoded, err := codecs.DecodeRaw(".worldSaveData.BaseCampSaveData.Value.WorkerDirector.RawData", wdBytes)
		if err != nil {
			return nil, fmt.Errorf("planner: decode worker director: %w", err)
		}
		wd, ok := wdDecoded.(rawcodec.WorkerDirectorValue)
		if !ok {
			continue
		}

		baseToContainer[baseID] = normalizeGUID(wd.ContainerID)
	}

	return baseToContainer, nil
}

func extractContainerSlots(worldSave *gvas.PropertyMap, codecs *rawcodec.Registry) (map[string][]slotRef, error) {
	containerSlots := make(map[string][]slotRef)

	containerMap, ok := fieldMapValue(worldSave, "CharacterContainerSaveData")
	if !ok {
		return containerSlots, nil
	}

	for i, keyProps := range containerMap.Keys.Props {
		if keyProps == nil || i >= len(containerMap.Values.Props) {
			continue
		}
		containerID, ok := fieldGuid(keyProps, "ID")
		if !ok {
			continue
		}

		valueProps := containerMap.Values.Props[i]
		if valueProps == nil {
			continue
		}
		slotsOuter, ok := fieldMap(valueProps, "Slots")
		if !ok {
			continue
		}
		slotsArray, ok := fieldArray(slotsOuter, "Slots")
		if !ok {
			continue
		}

		var refs []slotRef
		for idx, slotProps := range slotsArray.Props {
			if slotProps == nil {
				continue
			}
			rawBytes, ok := fieldBytes(slotProps, "RawData")
			if !ok {
				continue
			}
			_, decoded, err := codecs.DecodeRaw(".worldSaveData.CharacterContainerSaveData.Value.Slots.Slots.RawData", rawBytes)
			if err != nil {
				return nil, fmt.Errorf("planner: decode container slot: %w", err)
			}
			slot, ok := decoded.(rawcodec.CharacterContainerSlotValue)
			if !ok || slot.IsEmpty {
				continue
			}
			instanceID := normalizeGUID(slot.InstanceID)
			if isZeroGUID(instanceID) {
				continue
			}
			refs = append(refs, slotRef{SlotIndex: idx, InstanceID: instanceID})
		}
		containerSlots[containerID] = refs
	}

	return containerSlots, nil
}

func extractCharacters(worldSave *gvas.PropertyMap, hints map[string]string, required map[string]struct{}, rawFileRef string, onProgress CharacterProgressFunc) ([]Player, []Pal, int, int, error) {
	var players []Player
	var pals []Pal

	charMap, ok := fieldMapValue(worldSave, "CharacterSaveParameterMap")
	if !ok {
		return players, pals, 0, 0, nil
	}

	const basePath = ".worldSaveData.CharacterSaveParameterMap.Value.RawData"
	total := len(charMap.Keys.Props)
	selected := 0

	for i, keyProps := range charMap.Keys.Props {
		player, pal, wasSelected, err := extractOneCharacter(charMap, i, keyProps, hints, basePath, required, rawFileRef)
		if err != nil {
			return nil, nil, 0, 0, err
		}
		if wasSelected {
			selected++
		}
		if player != nil {
			players = append(players, *player)
		}
		if pal != nil {
			pals = append(pals, *pal)
		}

		processed := i + 1
		if onProgress != nil && (processed == total || processed%64 == 0 || wasSelected) {
			onProgress(processed, selected, total)
		}
	}

	return players, pals, total, selected, nil
}

func extractOneCharacter(charMap gvas.MapValue, i int, keyProps *gvas.PropertyMap, hints map[string]string, basePath string, required map[string]struct{}, rawFileRef string) (*Player, *Pal, bool, error) {
	if keyProps == nil || i >= len(charMap.Values.Props) {
		return nil, nil, false, nil
	}
	instanceID, _ := fieldGuid(keyProps, "InstanceId")
	playerUID, _ := fieldGuid(keyProps, "PlayerUId")

	valueProps := charMap.Values.Props[i]
	if valueProps == nil {
		return nil, nil, false, nil
	}
	rawBytes, ok := fieldBytes(valueProps, "RawData")
	if !ok {
		return nil, nil, false, nil
	}

	innerMap, tail, err := gvas.ParsePropertyStreamWithTail(rawBytes, hints, basePath)
	if err != nil {
		return nil, nil, false, fmt.Errorf("planner: parse character blob %s: %w", instanceID, err)
	}

	groupID := ""
	if len(tail) >= 20 {
		groupID = normalizeGUID(hexUpper(tail[4:20]))
	}

	saveParam, ok := fieldMap(innerMap, "SaveParameter")
	if !ok {
		return nil, nil, false, nil
	}

	normInstanceID := normalizeGUID(instanceID)
	normPlayerUID := normalizeGUID(playerUID)

	if isZeroGUID(normPlayerUID) {
		if _, ok := required[normInstanceID]; !ok {
			return nil, nil, false, nil
		}
	}

	isPlayer, _ := fieldBool(saveParam, "IsPlayer")
	nickname, _ := fieldString(saveParam, "NickName")
	level, _ := fieldInt(saveParam, "Level")
	rawEntityPath := fmt.Sprintf("worldSaveData.CharacterSaveParameterMap[%s]", normInstanceID)

	if isPlayer {
		return &Player{
			PlayerUID:     normPlayerUID,
			InstanceID:    normInstanceID,
			Name:          nickname,
			GuildID:       groupID,
			Level:         int(level),
			RawFileRef:    rawFileRef,
			RawEntityPath: rawEntityPath,
		}, nil, true, nil
	}

	ownerPlayerUID, _ := fieldGuid(saveParam, "OwnerPlayerUId")
	speciesID, _ := fieldString(saveParam, "CharacterID")
	gender, _ := fieldEnumString(saveParam, "Gender")
	exp, _ := fieldInt(saveParam, "Exp")

	return nil, &Pal{
		PalInstanceID:  normInstanceID,
		OwnerPlayerUID: normalizeGUID(ownerPlayerUID),
		SpeciesID:      speciesID,
		Nickname:       nickname,
		Gender:         gender,
		Level:          int(level),
		Exp:            exp,
		PassiveSkills:  fieldStringArray(saveParam, "PassiveSkillList"),
		MasteredWaza:   fieldStringArray(saveParam, "MasteredWaza"),
		EquippedWaza:   fieldStringArray(saveParam, "EquipWaza"),
		RawFileRef:     rawFileRef,
		RawEntityPath:  rawEntityPath,
	}, true, nil
}

func hexUpper(b []byte) string {
	const hextable = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}
