package hints

// seedTable is the built-in (path -> property-type) hint table for the
// Palworld save schema, covering the generic Map/Set containers whose
// element type the byte stream alone doesn't reveal. Ported from the
// reference save prober's palworld_hints() table. Paths are
// canonicalized (no leading dot); "Key"/"Value" suffixes distinguish a
// map's two sides.
var seedTable = map[string]string{
	"worldSaveData.CharacterContainerSaveData.Key":  "StructProperty",
	"worldSaveData.CharacterSaveParameterMap.Key":   "StructProperty",
	"worldSaveData.CharacterSaveParameterMap.Value": "StructProperty",
	"worldSaveData.FoliageGridSaveDataMap.Key":      "StructProperty",
	"worldSaveData.FoliageGridSaveDataMap.Value.ModelMap.Value":                                                        "StructProperty",
	"worldSaveData.FoliageGridSaveDataMap.Value.ModelMap.Value.InstanceDataMap.Key":                                    "StructProperty",
	"worldSaveData.FoliageGridSaveDataMap.Value.ModelMap.Value.InstanceDataMap.Value":                                  "StructProperty",
	"worldSaveData.FoliageGridSaveDataMap.Value":                                                                       "StructProperty",
	"worldSaveData.ItemContainerSaveData.Key":                                                                          "StructProperty",
	"worldSaveData.MapObjectSaveData.MapObjectSaveData.ConcreteModel.ModuleMap.Value":                                  "StructProperty",
	"worldSaveData.MapObjectSaveData.MapObjectSaveData.Model.EffectMap.Value":                                          "StructProperty",
	"worldSaveData.MapObjectSpawnerInStageSaveData.Key":                                                                "StructProperty",
	"worldSaveData.MapObjectSpawnerInStageSaveData.Value":                                                              "StructProperty",
	"worldSaveData.MapObjectSpawnerInStageSaveData.Value.SpawnerDataMapByLevelObjectInstanceId.Key":                    "Guid",
	"worldSaveData.MapObjectSpawnerInStageSaveData.Value.SpawnerDataMapByLevelObjectInstanceId.Value":                  "StructProperty",
	"worldSaveData.MapObjectSpawnerInStageSaveData.Value.SpawnerDataMapByLevelObjectInstanceId.Value.ItemMap.Value":    "StructProperty",
	"worldSaveData.WorkSaveData.WorkSaveData.WorkAssignMap.Value":                                                     "StructProperty",
	"worldSaveData.BaseCampSaveData.Key":                                                                               "Guid",
	"worldSaveData.BaseCampSaveData.Value":                                                                             "StructProperty",
	"worldSaveData.BaseCampSaveData.Value.ModuleMap.Value":                                                             "StructProperty",
	"worldSaveData.ItemContainerSaveData.Value":                                                                        "StructProperty",
	"worldSaveData.CharacterContainerSaveData.Value":                                                                   "StructProperty",
	"worldSaveData.GroupSaveDataMap.Key":                                                                               "Guid",
	"worldSaveData.GroupSaveDataMap.Value":                                                                             "StructProperty",
	"worldSaveData.EnemyCampSaveData.EnemyCampStatusMap.Value":                                                         "StructProperty",
	"worldSaveData.DungeonSaveData.DungeonSaveData.MapObjectSaveData.MapObjectSaveData.Model.EffectMap.Value":          "StructProperty",
	"worldSaveData.DungeonSaveData.DungeonSaveData.MapObjectSaveData.MapObjectSaveData.ConcreteModel.ModuleMap.Value":  "StructProperty",
	"worldSaveData.InvaderSaveData.Key":                                                                                "Guid",
	"worldSaveData.InvaderSaveData.Value":                                                                              "StructProperty",
	"worldSaveData.OilrigSaveData.OilrigMap.Value":                                                                     "StructProperty",
	"worldSaveData.SupplySaveData.SupplyInfos.Key":                                                                     "Guid",
	"worldSaveData.SupplySaveData.SupplyInfos.Value":                                                                   "StructProperty",
	"worldSaveData.GuildExtraSaveDataMap.Key":                                                                          "Guid",
	"worldSaveData.GuildExtraSaveDataMap.Value":                                                                        "StructProperty",
	"worldSaveData.EnemyCampSaveData.EnemyCampStatusMap.Value.TreasureBoxInfoMapBySpawnerName.Value":                   "StructProperty",
}

// disabledPaths are seed entries that are intentionally excluded when
// materializing the effective seed map -- legacy schema fields the
// extractor never reads and the parser should not try to hint.
var disabledPaths = map[string]bool{}

// builtinSeed returns the seed map with disabled paths filtered out.
func builtinSeed() map[string]string {
	out := make(map[string]string, len(seedTable))
	for k, v := range seedTable {
		if disabledPaths[k] {
			continue
		}
		out[k] = v
	}
	return out
}
